package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// TicketFilter captures list query parameters.
type TicketFilter struct {
	RequesterID  *int64
	AssigneeID   *int64
	DestDeptID   *int64
	BranchID     *int64
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	Unassigned   bool
	SearchTerm   *string
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Claim(ctx context.Context, ticketID, agentID int64, claimedAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus, closedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
	Touch(ctx context.Context, id int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketSelect = `
    SELECT c.id_chamado, c.titulo, c.descricao, c.status, c.prioridade,
           c.id_solicitante, c.id_atendente, c.id_setor_origem, c.id_setor_destino, c.id_filial,
           c.data_abertura, c.data_assumido, c.data_fechamento, c.ultima_atualizacao,
           s.nome, a.nome, so.nome_setor, sd.nome_setor
    FROM chamados c
    JOIN usuario s ON s.id_usuario = c.id_solicitante
    LEFT JOIN usuario a ON a.id_usuario = c.id_atendente
    JOIN setor so ON so.id_setor = c.id_setor_origem
    JOIN setor sd ON sd.id_setor = c.id_setor_destino`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO chamados (titulo, descricao, status, prioridade, id_solicitante,
            id_setor_origem, id_setor_destino, id_filial)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id_chamado, data_abertura, ultima_atualizacao`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.RequesterID,
		ticket.OriginDeptID,
		ticket.DestDeptID,
		ticket.BranchID,
	).Scan(&ticket.ID, &ticket.OpenedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, ticketSelect+` WHERE c.id_chamado=$1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("c.id_solicitante=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("c.id_atendente=$%d", len(args)))
	}
	if filter.DestDeptID != nil {
		args = append(args, *filter.DestDeptID)
		clauses = append(clauses, fmt.Sprintf("c.id_setor_destino=$%d", len(args)))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("c.id_filial=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "c.id_atendente IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("c.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("c.prioridade IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(c.titulo) LIKE %s OR LOWER(c.descricao) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.ultima_atualizacao DESC LIMIT %d OFFSET %d`,
		ticketSelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// Claim assigns the ticket to the agent only when it is still an unassigned
// open ticket. Returns false when another agent won the race.
func (r *ticketRepository) Claim(ctx context.Context, ticketID, agentID int64, claimedAt time.Time) (bool, error) {
	const query = `
        UPDATE chamados
        SET id_atendente=$1, status=$2, data_assumido=$3, ultima_atualizacao=NOW()
        WHERE id_chamado=$4 AND id_atendente IS NULL AND status=$5`
	cmd, err := r.pool.Exec(ctx, query,
		agentID, domain.StatusInProgress, claimedAt, ticketID, domain.StatusOpen)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus, closedAt *time.Time) error {
	const query = `
        UPDATE chamados SET status=$1, data_fechamento=$2, ultima_atualizacao=NOW()
        WHERE id_chamado=$3`
	cmd, err := r.pool.Exec(ctx, query, status, closedAt, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM chamados WHERE id_chamado=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Touch bumps ultima_atualizacao, used when an interaction is appended.
func (r *ticketRepository) Touch(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE chamados SET ultima_atualizacao=NOW() WHERE id_chamado=$1`, id)
	return err
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.OriginDeptID,
		&ticket.DestDeptID,
		&ticket.BranchID,
		&ticket.OpenedAt,
		&ticket.ClaimedAt,
		&ticket.ClosedAt,
		&ticket.UpdatedAt,
		&ticket.RequesterName,
		&ticket.AssigneeName,
		&ticket.OriginDept,
		&ticket.DestDept,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
