package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-br/chamados-service/internal/domain"
)

// AttachmentRepository persists attachment metadata; the blob itself lives in
// the storage layer under StorageKey.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	GetByID(ctx context.Context, id int64) (*domain.Attachment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates the repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO chamadoanexo (id_chamado, nome_original, mime_type, caminho_servidor, tamanho_bytes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id_anexo, data_upload`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.FileName,
		attachment.MimeType,
		attachment.StorageKey,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.UploadedAt)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*domain.Attachment, error) {
	const query = `
        SELECT id_anexo, id_chamado, nome_original, mime_type, caminho_servidor, tamanho_bytes, data_upload
        FROM chamadoanexo WHERE id_anexo=$1`
	var attachment domain.Attachment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.FileName,
		&attachment.MimeType,
		&attachment.StorageKey,
		&attachment.SizeBytes,
		&attachment.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT id_anexo, id_chamado, nome_original, mime_type, caminho_servidor, tamanho_bytes, data_upload
        FROM chamadoanexo WHERE id_chamado=$1 ORDER BY data_upload ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.StorageKey,
			&attachment.SizeBytes,
			&attachment.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
