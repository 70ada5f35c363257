package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// DepartmentRepository reads department reference data.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

// BranchRepository reads branch reference data.
type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository instantiates the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var dept domain.Department
	if err := r.pool.QueryRow(ctx,
		`SELECT id_setor, nome_setor FROM setor WHERE id_setor=$1`, id,
	).Scan(&dept.ID, &dept.Name); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_setor, nome_setor FROM setor ORDER BY nome_setor ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository instantiates the repository.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

func (r *branchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var branch domain.Branch
	if err := r.pool.QueryRow(ctx,
		`SELECT id_filial, nome_filial, endereco FROM filial WHERE id_filial=$1`, id,
	).Scan(&branch.ID, &branch.Name, &branch.Address); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.pool.Query(ctx, `SELECT id_filial, nome_filial, endereco FROM filial ORDER BY nome_filial ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Branch
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(&branch.ID, &branch.Name, &branch.Address); err != nil {
			return nil, err
		}
		result = append(result, branch)
	}
	return result, rows.Err()
}
