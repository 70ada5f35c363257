package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// InteractionRepository persists the append-only ticket thread.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.Interaction) error
	GetByID(ctx context.Context, id int64) (*domain.Interaction, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error)
}

type interactionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository instantiates the repository.
func NewInteractionRepository(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepository{pool: pool}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *domain.Interaction) error {
	const query = `
        INSERT INTO interacao (id_chamado, id_usuario, tipo_interacao, conteudo)
        VALUES ($1, $2, $3, $4)
        RETURNING id_interacao, data_interacao`
	return r.pool.QueryRow(ctx, query,
		interaction.TicketID,
		interaction.AuthorID,
		interaction.Kind,
		interaction.Content,
	).Scan(&interaction.ID, &interaction.CreatedAt)
}

func (r *interactionRepository) GetByID(ctx context.Context, id int64) (*domain.Interaction, error) {
	const query = `
        SELECT i.id_interacao, i.id_chamado, i.id_usuario, i.tipo_interacao, i.conteudo, i.data_interacao, u.nome
        FROM interacao i
        JOIN usuario u ON u.id_usuario = i.id_usuario
        WHERE i.id_interacao=$1`

	var interaction domain.Interaction
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&interaction.ID,
		&interaction.TicketID,
		&interaction.AuthorID,
		&interaction.Kind,
		&interaction.Content,
		&interaction.CreatedAt,
		&interaction.AuthorName,
	); err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *interactionRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error) {
	const query = `
        SELECT i.id_interacao, i.id_chamado, i.id_usuario, i.tipo_interacao, i.conteudo, i.data_interacao, u.nome
        FROM interacao i
        JOIN usuario u ON u.id_usuario = i.id_usuario
        WHERE i.id_chamado=$1
        ORDER BY i.data_interacao ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Interaction
	for rows.Next() {
		var interaction domain.Interaction
		if err := rows.Scan(
			&interaction.ID,
			&interaction.TicketID,
			&interaction.AuthorID,
			&interaction.Kind,
			&interaction.Content,
			&interaction.CreatedAt,
			&interaction.AuthorName,
		); err != nil {
			return nil, err
		}
		result = append(result, interaction)
	}
	return result, rows.Err()
}
