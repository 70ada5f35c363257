package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByCredentialID(ctx context.Context, credentialID int64) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	ListActiveAttendants(ctx context.Context, departmentID *int64) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id_usuario, nome, username, email, tipo_usuario, id_setor, id_filial, id_credencial, ativo, data_cadastro`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO usuario (nome, username, email, tipo_usuario, id_setor, id_filial, id_credencial, ativo)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id_usuario, data_cadastro`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Username,
		user.Email,
		user.Role,
		user.DepartmentID,
		user.BranchID,
		user.CredentialID,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE usuario SET nome=$1, email=$2, tipo_usuario=$3, id_setor=$4, id_filial=$5, id_credencial=$6, ativo=$7
        WHERE id_usuario=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		user.DepartmentID,
		user.BranchID,
		user.CredentialID,
		user.Active,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE usuario SET username=$1 WHERE id_usuario=$2`, username, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM usuario WHERE id_usuario=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM usuario WHERE id_usuario=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM usuario WHERE username=$1`, username)
}

func (r *userRepository) GetByCredentialID(ctx context.Context, credentialID int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM usuario WHERE id_credencial=$1`, credentialID)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.DepartmentID,
		&user.BranchID,
		&user.CredentialID,
		&user.Active,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM usuario ORDER BY nome ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListActiveAttendants returns active agents and admins, optionally limited
// to one department. Used to fan out ticket-created notifications.
func (r *userRepository) ListActiveAttendants(ctx context.Context, departmentID *int64) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuario
        WHERE ativo = TRUE AND tipo_usuario IN ('ATENDENTE','ADMIN')`
	args := []any{}
	if departmentID != nil {
		query += ` AND id_setor = $1`
		args = append(args, *departmentID)
	}
	query += ` ORDER BY nome ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Username,
			&user.Email,
			&user.Role,
			&user.DepartmentID,
			&user.BranchID,
			&user.CredentialID,
			&user.Active,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
