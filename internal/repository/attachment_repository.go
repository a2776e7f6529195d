package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolveit/helpdesk/internal/domain"
)

// AttachmentRepository manages ticket attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	SoftDelete(ctx context.Context, id, deletedBy string) error
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, uploader_id, original_name, stored_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.UploaderID,
		attachment.OriginalName,
		attachment.StoredName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, uploader_id, original_name, stored_name, mime_type, size_bytes,
               deleted_at, deleted_by, created_at
        FROM attachments WHERE ticket_id=$1 AND deleted_at IS NULL
        ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.TicketID,
			&att.UploaderID,
			&att.OriginalName,
			&att.StoredName,
			&att.MimeType,
			&att.SizeBytes,
			&att.DeletedAt,
			&att.DeletedBy,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) SoftDelete(ctx context.Context, id, deletedBy string) error {
	const query = `
        UPDATE attachments SET deleted_at=NOW(), deleted_by=$1
        WHERE id=$2 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, deletedBy, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
