// Package users содержит бизнес-логику административных отчётов
// по пользователям: постраничный список и выгрузку CSV.
package users

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// Repository определяет методы хранилища для отчётов по пользователям.
type Repository interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
	ListAllUsers(ctx context.Context) ([]*models.User, error)
}

// Service реализует отчёты по пользователям.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Page содержит страницу пользователей и данные пагинации.
type Page struct {
	Users      []*models.User `json:"users"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// List возвращает страницу пользователей, объединённых с признаком
// администратора.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	list, err := s.repo.ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	totalPages := (total + limit - 1) / limit
	return &Page{
		Users:      list,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// WriteCSV выгружает всех пользователей в CSV с фиксированным заголовком
// ID,Email,First Name,Last Name,Created At,Is Admin.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	list, err := s.repo.ListAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Email", "First Name", "Last Name", "Created At", "Is Admin"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, u := range list {
		isAdmin := "No"
		if u.IsAdmin {
			isAdmin = "Yes"
		}
		record := []string{
			u.ID,
			u.Email,
			u.FirstName,
			u.LastName,
			u.CreatedAt.UTC().Format(time.RFC3339),
			isAdmin,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
