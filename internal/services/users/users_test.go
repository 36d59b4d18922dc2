package users

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListAllUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_List(t *testing.T) {
	page := []*models.User{
		{ID: "user_1", Email: "a@example.com"},
		{ID: "user_2", Email: "b@example.com"},
	}

	tests := []struct {
		name               string
		page               int
		limit              int
		setupMocks         func(*MockRepository)
		expectedPage       int
		expectedTotalPages int
		expectedError      bool
	}{
		{
			name:  "explicit page and limit",
			page:  2,
			limit: 2,
			setupMocks: func(r *MockRepository) {
				r.On("CountUsers", mock.Anything).Return(5, nil).Once()
				r.On("ListUsers", mock.Anything, 2, 2).Return(page, nil).Once()
			},
			expectedPage:       2,
			expectedTotalPages: 3,
		},
		{
			name:  "defaults applied for zero values",
			page:  0,
			limit: 0,
			setupMocks: func(r *MockRepository) {
				r.On("CountUsers", mock.Anything).Return(5, nil).Once()
				r.On("ListUsers", mock.Anything, 10, 0).Return(page, nil).Once()
			},
			expectedPage:       1,
			expectedTotalPages: 1,
		},
		{
			name:  "count error",
			page:  1,
			limit: 10,
			setupMocks: func(r *MockRepository) {
				r.On("CountUsers", mock.Anything).Return(0, errors.New("db error")).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMocks(repo)

			service := New(repo, newNoopLogger())

			result, err := service.List(context.Background(), tt.page, tt.limit)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedPage, result.Page)
				assert.Equal(t, tt.expectedTotalPages, result.TotalPages)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestService_WriteCSV(t *testing.T) {
	createdAt := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	all := []*models.User{
		{ID: "user_1", Email: "a@example.com", FirstName: "Alice", LastName: "Artist", CreatedAt: createdAt, IsAdmin: true},
		{ID: "user_2", Email: "b@example.com", FirstName: "Bob", LastName: "Beats", CreatedAt: createdAt, IsAdmin: false},
	}

	repo := new(MockRepository)
	repo.On("ListAllUsers", mock.Anything).Return(all, nil).Once()

	service := New(repo, newNoopLogger())

	var buf bytes.Buffer
	err := service.WriteCSV(context.Background(), &buf)

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ID,Email,First Name,Last Name,Created At,Is Admin\n")
	assert.Contains(t, out, "user_1,a@example.com,Alice,Artist,2026-08-15T10:30:00Z,Yes")
	assert.Contains(t, out, "user_2,b@example.com,Bob,Beats,2026-08-15T10:30:00Z,No")
	repo.AssertExpectations(t)
}

func TestService_WriteCSV_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListAllUsers", mock.Anything).Return(nil, errors.New("db error")).Once()

	service := New(repo, newNoopLogger())

	var buf bytes.Buffer
	err := service.WriteCSV(context.Background(), &buf)

	assert.Error(t, err)
	assert.Empty(t, buf.String())
	repo.AssertExpectations(t)
}
