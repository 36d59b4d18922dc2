// Package userlist реализует HTTP-обработчик административного списка
// пользователей: постраничный JSON и выгрузку CSV через ?format=csv.
package userlist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/promo-dashboard/internal/http/response"
	"github.com/magabrotheeeer/promo-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/promo-dashboard/internal/services/users"
)

// Service описывает интерфейс бизнес-логики отчётов по пользователям.
type Service interface {
	List(ctx context.Context, page, limit int) (*users.Page, error)
	WriteCSV(ctx context.Context, w io.Writer) error
}

// Handler управляет HTTP-запросами списка пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает страницу пользователей с признаком администратора. При format=csv отдаёт полную выгрузку CSV.
// @Tags Admin
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(10)
// @Param format query string false "Формат ответа: csv"
// @Success 200 {object} response.Response "Страница пользователей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if r.URL.Query().Get("format") == "csv" {
		filename := fmt.Sprintf("users-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		if err := h.service.WriteCSV(r.Context(), w); err != nil {
			// Заголовки уже отправлены, остаётся только залогировать.
			log.Error("failed to write csv export", sl.Err(err))
			return
		}
		log.Info("users exported to csv")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	res, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	log.Info("users listed",
		slog.Int("page", res.Page),
		slog.Int("total", res.Total))
	render.JSON(w, r, response.OKWithData(res))
}
