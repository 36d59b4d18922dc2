package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// UpsertEntitlementPending создаёт подписку в статусе pending_payment
// или переводит существующую в этот статус. Повторная покупка той же
// услуги переиспользует строку (user_id, service_id).
func (s *Storage) UpsertEntitlementPending(ctx context.Context, userID, serviceID string) error {
	const op = "storage.UpsertEntitlementPending"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_services (user_id, service_id, status)
			  VALUES ($1, $2, 'pending_payment')
			  ON CONFLICT (user_id, service_id)
			  DO UPDATE SET status = 'pending_payment', updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, userID, serviceID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetEntitlement возвращает подписку пользователя на услугу.
func (s *Storage) GetEntitlement(ctx context.Context, userID, serviceID string) (*models.Entitlement, error) {
	const op = "storage.GetEntitlement"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, service_id, status, start_date, end_date, created_at, updated_at
			  FROM user_services
			  WHERE user_id = $1 AND service_id = $2`
	row := s.DB.QueryRowContext(ctx, query, userID, serviceID)

	var item models.Entitlement
	var startDate, endDate sql.NullTime
	if err := row.Scan(&item.ID, &item.UserID, &item.ServiceID, &item.Status,
		&startDate, &endDate, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if startDate.Valid {
		item.StartDate = &startDate.Time
	}
	if endDate.Valid {
		item.EndDate = &endDate.Time
	}
	return &item, nil
}

// ListEntitlementsByUser возвращает все подписки пользователя.
func (s *Storage) ListEntitlementsByUser(ctx context.Context, userID string) ([]*models.Entitlement, error) {
	const op = "storage.ListEntitlementsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, service_id, status, start_date, end_date, created_at, updated_at
			  FROM user_services
			  WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Entitlement
	for rows.Next() {
		var item models.Entitlement
		var startDate, endDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.UserID, &item.ServiceID, &item.Status,
			&startDate, &endDate, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if startDate.Valid {
			item.StartDate = &startDate.Time
		}
		if endDate.Valid {
			item.EndDate = &endDate.Time
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
