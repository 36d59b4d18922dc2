package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// AppendAudit добавляет запись в журнал аудита. Журнал append-only:
// записи никогда не изменяются и не удаляются.
func (s *Storage) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	const op = "storage.AppendAudit"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var metadata sql.NullString
	if entry.Metadata != "" {
		metadata = sql.NullString{String: entry.Metadata, Valid: true}
	}

	query := `INSERT INTO audit_log (level, action, actor_id, resource, message, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		entry.Level, entry.Action, entry.ActorID, entry.Resource, entry.Message, metadata); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
