package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// DepartmentCount pairs a department with its ticket count.
type DepartmentCount struct {
	DepartmentID   int64
	DepartmentName string
	Count          int64
}

// StatsSnapshot aggregates cross-department ticket numbers.
type StatsSnapshot struct {
	Total             int64
	ByStatus          map[domain.TicketStatus]int64
	ByPriority        map[domain.TicketPriority]int64
	ByDestDepartment  []DepartmentCount
	AvgHoursToClaim   *float64
	AvgHoursToResolve *float64
}

// StatsRepository computes aggregate ticket statistics.
type StatsRepository interface {
	Snapshot(ctx context.Context) (*StatsSnapshot, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Snapshot(ctx context.Context) (*StatsSnapshot, error) {
	snapshot := &StatsSnapshot{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM chamados GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByStatus[status] = count
		snapshot.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT prioridade, COUNT(*) FROM chamados GROUP BY prioridade`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var priority domain.TicketPriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByPriority[priority] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
        SELECT c.id_setor_destino, s.nome_setor, COUNT(*)
        FROM chamados c
        JOIN setor s ON s.id_setor = c.id_setor_destino
        GROUP BY c.id_setor_destino, s.nome_setor
        ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var entry DepartmentCount
		if err := rows.Scan(&entry.DepartmentID, &entry.DepartmentName, &entry.Count); err != nil {
			rows.Close()
			return nil, err
		}
		snapshot.ByDestDepartment = append(snapshot.ByDestDepartment, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const timingQuery = `
        SELECT
            AVG(EXTRACT(EPOCH FROM (data_assumido - data_abertura)) / 3600.0)
                FILTER (WHERE data_assumido IS NOT NULL),
            AVG(EXTRACT(EPOCH FROM (data_fechamento - data_assumido)) / 3600.0)
                FILTER (WHERE data_assumido IS NOT NULL AND data_fechamento IS NOT NULL)
        FROM chamados`
	if err := r.pool.QueryRow(ctx, timingQuery).Scan(&snapshot.AvgHoursToClaim, &snapshot.AvgHoursToResolve); err != nil {
		return nil, err
	}

	return snapshot, nil
}
