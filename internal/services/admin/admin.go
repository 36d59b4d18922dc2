// Package admin содержит бизнес-логику набора администраторов.
//
// Набор жёстко ограничен: не более двух администраторов одновременно
// и всегда хотя бы один. Оба инварианта проверяются условными
// SQL-командами в хранилище, а не повторной проверкой в коде,
// поэтому конкурирующие мутации не могут их нарушить.
// Каждое решение о доступе и каждая мутация набора фиксируются
// в журнале аудита.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// Ошибки мутаций набора администраторов.
var (
	ErrAlreadyAdmin      = errors.New("user is already an admin")
	ErrAdminLimitReached = errors.New("maximum number of admins (2) reached")
	ErrLastAdmin         = errors.New("cannot remove the last admin")
	ErrAdminsExist       = errors.New("admins already exist")
)

// Repository определяет методы хранилища для набора администраторов
// и журнала аудита.
type Repository interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	CountAdmins(ctx context.Context) (int, error)
	// AddAdmin выполняет условную вставку и возвращает количество вставленных строк.
	AddAdmin(ctx context.Context, userID string) (int, error)
	// RemoveAdmin выполняет условное удаление и возвращает количество удалённых строк.
	RemoveAdmin(ctx context.Context, userID string) (int, error)
	// InitializeFirstAdmin вставляет первого администратора в пустой набор.
	InitializeFirstAdmin(ctx context.Context, userID string) (int, error)
	AppendAudit(ctx context.Context, entry models.AuditEntry) error
}

// Service реализует шлюз авторизации администраторов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// audit пишет запись в журнал аудита. Недоступность журнала не должна
// ронять операцию, ошибка только логируется.
func (s *Service) audit(ctx context.Context, level, action, actorID, resource, message string) {
	entry := models.AuditEntry{
		Level:    level,
		Action:   action,
		ActorID:  actorID,
		Resource: resource,
		Message:  message,
	}
	if err := s.repo.AppendAudit(ctx, entry); err != nil {
		s.log.Error("failed to append audit entry", sl.Err(err))
	}
}

// IsAdmin сообщает, является ли пользователь администратором.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.IsAdmin(ctx, userID)
}

// Authorize проверяет право пользователя на привилегированное действие
// и фиксирует решение в журнале аудита.
func (s *Service) Authorize(ctx context.Context, userID, action, resource string) (bool, error) {
	ok, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin membership: %w", err)
	}
	if ok {
		s.audit(ctx, models.AuditInfo, "allow", userID, resource, fmt.Sprintf("authorized %s", action))
	} else {
		s.audit(ctx, models.AuditWarn, "deny", userID, resource, fmt.Sprintf("unauthorized attempt to %s", action))
	}
	return ok, nil
}

// AddAdmin добавляет пользователя в набор администраторов.
// Возвращает ErrAlreadyAdmin, если пользователь уже в наборе,
// и ErrAdminLimitReached, если набор заполнен.
func (s *Service) AddAdmin(ctx context.Context, actorID, userID string) error {
	alreadyAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check admin membership: %w", err)
	}
	if alreadyAdmin {
		return ErrAlreadyAdmin
	}

	inserted, err := s.repo.AddAdmin(ctx, userID)
	if err != nil {
		s.audit(ctx, models.AuditError, "create", actorID, "admin_users", "error adding admin user")
		return fmt.Errorf("failed to add admin: %w", err)
	}
	if inserted == 0 {
		return ErrAdminLimitReached
	}

	s.audit(ctx, models.AuditInfo, "create", actorID, "admin_users",
		fmt.Sprintf("admin user %s added", userID))
	return nil
}

// RemoveAdmin удаляет пользователя из набора администраторов.
// Возвращает ErrLastAdmin, если в наборе остался один администратор.
func (s *Service) RemoveAdmin(ctx context.Context, actorID, userID string) error {
	removed, err := s.repo.RemoveAdmin(ctx, userID)
	if err != nil {
		s.audit(ctx, models.AuditError, "delete", actorID, "admin_users", "error removing admin user")
		return fmt.Errorf("failed to remove admin: %w", err)
	}
	if removed == 0 {
		count, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if count <= 1 {
			return ErrLastAdmin
		}
		// Пользователь не был администратором, удалять нечего.
		return nil
	}

	s.audit(ctx, models.AuditInfo, "delete", actorID, "admin_users",
		fmt.Sprintf("admin user %s removed", userID))
	return nil
}

// InitializeFirstAdmin назначает первого администратора, только если
// набор пуст. Возвращает ErrAdminsExist, если администраторы уже есть.
func (s *Service) InitializeFirstAdmin(ctx context.Context, userID string) error {
	inserted, err := s.repo.InitializeFirstAdmin(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to initialize first admin: %w", err)
	}
	if inserted == 0 {
		return ErrAdminsExist
	}

	s.audit(ctx, models.AuditInfo, "create", userID, "admin_users", "first admin initialized")
	return nil
}
