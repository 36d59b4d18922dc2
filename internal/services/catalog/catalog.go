// Package catalog содержит бизнес-логику каталога услуг, включая кеширование.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// ErrServiceNotFound возвращается, когда услуга не существует или мягко удалена.
var ErrServiceNotFound = errors.New("service not found")

const activeServicesCacheKey = "services:active"

// Repository определяет методы хранилища для каталога услуг.
type Repository interface {
	// CreateService добавляет новую услугу и возвращает её ID.
	CreateService(ctx context.Context, service models.Service) (string, error)
	// ReadService возвращает не удалённую услугу по ID.
	ReadService(ctx context.Context, id string) (*models.Service, error)
	// ListServices возвращает не удалённые услуги, при onlyActive = true только включённые.
	ListServices(ctx context.Context, onlyActive bool) ([]*models.Service, error)
	// UpdateService частично обновляет услугу и возвращает количество изменённых строк.
	UpdateService(ctx context.Context, id string, upd models.ServiceUpdate) (int, error)
	// SoftDeleteService помечает услугу удалённой и возвращает количество изменённых строк.
	SoftDeleteService(ctx context.Context, id string) (int, error)
	// ToggleService переключает флаг is_active и возвращает новое значение.
	ToggleService(ctx context.Context, id string) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику каталога услуг.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// invalidate сбрасывает кеш списка после любой мутации каталога.
func (s *Service) invalidate() {
	if err := s.cache.Invalidate(activeServicesCacheKey); err != nil {
		s.log.Warn("failed to invalidate services cache", sl.Err(err))
	}
}

// ListActive возвращает активные не удалённые услуги, новые первыми.
// Список кешируется, кеш сбрасывается при любой мутации каталога.
func (s *Service) ListActive(ctx context.Context) ([]*models.Service, error) {
	var cached []*models.Service
	found, err := s.cache.Get(activeServicesCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read services cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	result, err := s.repo.ListServices(ctx, true)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(activeServicesCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache services", sl.Err(err))
	}
	return result, nil
}

// ListAll возвращает все не удалённые услуги для административного раздела.
func (s *Service) ListAll(ctx context.Context) ([]*models.Service, error) {
	return s.repo.ListServices(ctx, false)
}

// Read возвращает услугу по ID.
func (s *Service) Read(ctx context.Context, id string) (*models.Service, error) {
	service, err := s.repo.ReadService(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return service, nil
}

// Create добавляет новую услугу и возвращает её ID.
func (s *Service) Create(ctx context.Context, req models.DummyService) (string, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	service := models.Service{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    isActive,
		ImageURL:    req.ImageURL,
		YoutubeURL:  req.YoutubeURL,
	}

	id, err := s.repo.CreateService(ctx, service)
	if err != nil {
		return "", err
	}

	s.log.Info("created new service", slog.String("id", id), slog.String("name", req.Name))
	s.invalidate()
	return id, nil
}

// Update частично обновляет услугу. Мягко удалённые услуги не изменяются.
func (s *Service) Update(ctx context.Context, id string, upd models.ServiceUpdate) error {
	if upd.Price != nil && *upd.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	updated, err := s.repo.UpdateService(ctx, id, upd)
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrServiceNotFound
	}

	s.invalidate()
	return nil
}

// SoftDelete помечает услугу удалённой: она исчезает из всех списков
// и больше не может изменяться.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	deleted, err := s.repo.SoftDeleteService(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrServiceNotFound
	}

	s.log.Info("service soft-deleted", slog.String("id", id))
	s.invalidate()
	return nil
}

// Toggle переключает флаг is_active услуги и возвращает новое значение.
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	isActive, err := s.repo.ToggleService(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrServiceNotFound
	}
	if err != nil {
		return false, err
	}

	s.invalidate()
	return isActive, nil
}
