package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/promo-dashboard/internal/models"
)

// CreatePayment вставляет платёж в статусе pending и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_id, service_id, amount, currency, status,
			      payment_method, gateway_payment_id, order_id)
			  VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		payment.UserID, payment.ServiceID, payment.Amount, payment.Currency,
		payment.PaymentMethod, payment.GatewayPaymentID, payment.OrderID).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

func (s *Storage) readPayment(ctx context.Context, where string, arg any) (*models.Payment, error) {
	query := `SELECT id, user_id, service_id, amount, currency, status,
			      payment_method, gateway_payment_id, order_id, created_at
			  FROM payments
			  WHERE ` + where
	row := s.DB.QueryRowContext(ctx, query, arg)

	var result models.Payment
	if err := row.Scan(&result.ID, &result.UserID, &result.ServiceID, &result.Amount,
		&result.Currency, &result.Status, &result.PaymentMethod,
		&result.GatewayPaymentID, &result.OrderID, &result.CreatedAt); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPayment возвращает платёж по внутреннему ID.
func (s *Storage) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.readPayment(ctx, "id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPaymentByGatewayID возвращает платёж по внешнему ID шлюза.
func (s *Storage) GetPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByGatewayID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.readPayment(ctx, "gateway_payment_id = $1", gatewayPaymentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReconcilePayment атомарно переводит платёж из pending в терминальный
// статус и согласует подписку пользователя в одной транзакции.
//
// Условие status = 'pending' в UPDATE платежа делает операцию
// идемпотентной под гонкой: из двух конкурирующих писателей строку
// изменит только первый, второй получит 0 изменённых строк, и вся
// транзакция станет no-op. Терминальный платёж не изменяется никогда.
//
// При terminalStatus = paid подписка безусловно активируется
// (повторная активация идемпотентна). При failed/expired подписка
// деактивируется только из статуса pending_payment, чтобы неудачная
// повторная покупка не сбросила уже действующую подписку.
func (s *Storage) ReconcilePayment(ctx context.Context, paymentID, terminalStatus, userID, serviceID string) (int, error) {
	const op = "storage.ReconcilePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = $1 WHERE id = $2 AND status = 'pending'`,
		terminalStatus, paymentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, tx.Commit()
	}

	if terminalStatus == models.PaymentPaid {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_services (user_id, service_id, status, start_date)
			 VALUES ($1, $2, 'active', now())
			 ON CONFLICT (user_id, service_id)
			 DO UPDATE SET status = 'active', start_date = now(), updated_at = now()`,
			userID, serviceID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE user_services SET status = 'inactive', updated_at = now()
			 WHERE user_id = $1 AND service_id = $2 AND status = 'pending_payment'`,
			userID, serviceID)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
