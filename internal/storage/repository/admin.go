package repository

import (
	"context"
	"fmt"
)

// IsAdmin сообщает, входит ли пользователь в набор администраторов.
func (s *Storage) IsAdmin(ctx context.Context, userID string) (bool, error) {
	const op = "storage.IsAdmin"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id = $1)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CountAdmins возвращает размер набора администраторов.
func (s *Storage) CountAdmins(ctx context.Context) (int, error) {
	const op = "storage.CountAdmins"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// AddAdmin добавляет пользователя в набор администраторов одним
// условным INSERT: инвариант "не более двух администраторов"
// проверяется внутри той же команды, поэтому конкурирующие вызовы
// не могут превысить лимит. Возвращает количество вставленных строк.
func (s *Storage) AddAdmin(ctx context.Context, userID string) (int, error) {
	const op = "storage.AddAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admin_users (user_id)
			  SELECT $1
			  WHERE (SELECT COUNT(*) FROM admin_users) < 2
			  ON CONFLICT (user_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveAdmin удаляет пользователя из набора администраторов одним
// условным DELETE: инвариант "всегда остаётся хотя бы один
// администратор" проверяется внутри той же команды.
// Возвращает количество удалённых строк.
func (s *Storage) RemoveAdmin(ctx context.Context, userID string) (int, error) {
	const op = "storage.RemoveAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM admin_users
			  WHERE user_id = $1
			    AND (SELECT COUNT(*) FROM admin_users) > 1`
	result, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// InitializeFirstAdmin добавляет первого администратора, только если
// набор администраторов пуст. Возвращает количество вставленных строк.
func (s *Storage) InitializeFirstAdmin(ctx context.Context, userID string) (int, error) {
	const op = "storage.InitializeFirstAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admin_users (user_id)
			  SELECT $1
			  WHERE NOT EXISTS (SELECT 1 FROM admin_users)`
	result, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
