package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// CreateService вставляет новую услугу и возвращает её ID.
func (s *Storage) CreateService(ctx context.Context, service models.Service) (string, error) {
	const op = "storage.CreateService"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO services (name, description, price, is_active, image_url, youtube_url)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		service.Name, service.Description, service.Price, service.IsActive,
		service.ImageURL, service.YoutubeURL).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func scanService(row interface{ Scan(dest ...any) error }, item *models.Service) error {
	var deletedAt sql.NullTime
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.IsActive, &item.ImageURL, &item.YoutubeURL,
		&item.CreatedAt, &item.UpdatedAt, &deletedAt); err != nil {
		return err
	}
	if deletedAt.Valid {
		item.DeletedAt = &deletedAt.Time
	}
	return nil
}

// ReadService возвращает не удалённую услугу по её ID.
func (s *Storage) ReadService(ctx context.Context, id string) (*models.Service, error) {
	const op = "storage.ReadService"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, is_active, image_url, youtube_url,
			      created_at, updated_at, deleted_at
			  FROM services
			  WHERE id = $1 AND deleted_at IS NULL`
	var result models.Service
	if err := scanService(s.DB.QueryRowContext(ctx, query, id), &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListServices возвращает услуги, отсортированные по дате создания по убыванию.
// Мягко удалённые услуги не попадают в выборку независимо от флага is_active.
// При onlyActive = true дополнительно отфильтровываются выключенные услуги.
func (s *Storage) ListServices(ctx context.Context, onlyActive bool) ([]*models.Service, error) {
	const op = "storage.ListServices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price, is_active, image_url, youtube_url,
			      created_at, updated_at, deleted_at
			  FROM services
			  WHERE deleted_at IS NULL AND ($1 = false OR is_active = true)
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Service
	for rows.Next() {
		var item models.Service
		if err := scanService(rows, &item); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateService частично обновляет услугу и возвращает количество изменённых строк.
// Мягко удалённые услуги не изменяются.
func (s *Storage) UpdateService(ctx context.Context, id string, upd models.ServiceUpdate) (int, error) {
	const op = "storage.UpdateService"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE services
			  SET name = COALESCE($1, name),
			      description = COALESCE($2, description),
			      price = COALESCE($3, price),
			      is_active = COALESCE($4, is_active),
			      image_url = COALESCE($5, image_url),
			      youtube_url = COALESCE($6, youtube_url),
			      updated_at = now()
			  WHERE id = $7 AND deleted_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query,
		upd.Name, upd.Description, upd.Price, upd.IsActive, upd.ImageURL, upd.YoutubeURL, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SoftDeleteService помечает услугу удалённой и выключает её.
// Возвращает количество изменённых строк.
func (s *Storage) SoftDeleteService(ctx context.Context, id string) (int, error) {
	const op = "storage.SoftDeleteService"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE services
			  SET deleted_at = now(), is_active = false, updated_at = now()
			  WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ToggleService переключает флаг is_active услуги и возвращает новое значение.
func (s *Storage) ToggleService(ctx context.Context, id string) (bool, error) {
	const op = "storage.ToggleService"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE services
			  SET is_active = NOT is_active, updated_at = now()
			  WHERE id = $1 AND deleted_at IS NULL
			  RETURNING is_active`
	var isActive bool
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&isActive); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return isActive, nil
}
