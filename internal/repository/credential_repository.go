package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// CredentialRepository persists auth identities.
type CredentialRepository interface {
	Create(ctx context.Context, cred *domain.Credential) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Credential, error)
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string, mustChange bool) error
	UpdateUsername(ctx context.Context, id int64, username string) error
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO credencial (username, password_hash, must_change_password)
        VALUES ($1, $2, $3)
        RETURNING id_credencial, data_criacao`

	return r.pool.QueryRow(ctx, query,
		cred.Username,
		cred.PasswordHash,
		cred.MustChangePassword,
	).Scan(&cred.ID, &cred.CreatedAt)
}

func (r *credentialRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM credencial WHERE id_credencial=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id int64) (*domain.Credential, error) {
	return r.fetchSingle(ctx, `SELECT id_credencial, username, password_hash, must_change_password, data_criacao
        FROM credencial WHERE id_credencial=$1`, id)
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	return r.fetchSingle(ctx, `SELECT id_credencial, username, password_hash, must_change_password, data_criacao
        FROM credencial WHERE username=$1`, username)
}

func (r *credentialRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Credential, error) {
	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cred.ID,
		&cred.Username,
		&cred.PasswordHash,
		&cred.MustChangePassword,
		&cred.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, mustChange bool) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE credencial SET password_hash=$1, must_change_password=$2 WHERE id_credencial=$3`,
		passwordHash, mustChange, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE credencial SET username=$1 WHERE id_credencial=$2`, username, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
