// Package paymentgateway реализует клиент криптовалютного платёжного шлюза.
//
// Каждый запрос подписывается: тело сериализуется в JSON с лексикографически
// отсортированными ключами, конкатенируется с платёжным ключом и хэшируется
// md5. Подпись передаётся в заголовке sign рядом с заголовком merchant.
// Клиент не делает повторных попыток — политика ретраев принадлежит вызывающему.
package paymentgateway

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
)

// ErrGateway возвращается при любом неуспешном ответе или некорректном теле.
var ErrGateway = errors.New("payment gateway error")

// Client клиент платёжного шлюза.
type Client struct {
	merchantID string
	paymentKey string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент шлюза.
func NewClient(cfg config.Gateway) *Client {
	return &Client{
		merchantID: cfg.MerchantID,
		paymentKey: cfg.PaymentKey,
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Sign вычисляет подпись запроса: md5(JSON с отсортированными ключами + ключ).
// encoding/json сериализует map с ключами в лексикографическом порядке,
// что совпадает с канонизацией на стороне шлюза.
func (c *Client) Sign(payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(append(body, []byte(c.paymentKey)...))
	return hex.EncodeToString(sum[:]), nil
}

func (c *Client) newRequest(ctx context.Context, path string, payload map[string]any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	sign, err := c.Sign(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", c.merchantID)
	req.Header.Set("sign", sign)
	return req, nil
}

func (c *Client) do(req *http.Request) (*PaymentResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrGateway, resp.Status)
	}

	var paymentResp PaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&paymentResp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	return &paymentResp, nil
}

// CreatePayment создаёт платёж на шлюзе и возвращает его внешний ID
// и ссылку на hosted-страницу оплаты.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*PaymentInfo, error) {
	const op = "paymentgateway.CreatePayment"
	payload := map[string]any{
		"amount":       params.Amount,
		"currency":     params.Currency,
		"order_id":     params.OrderID,
		"url_return":   params.URLReturn,
		"url_callback": params.URLCallback,
	}

	req, err := c.newRequest(ctx, "/payment", payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PaymentInfo{
		ExternalID:  resp.Result.UUID,
		RedirectURL: resp.Result.URL,
		Status:      NormalizeStatus(resp.Result.Status),
	}, nil
}

// CheckStatus запрашивает актуальный статус платежа у шлюза.
func (c *Client) CheckStatus(ctx context.Context, externalID string) (string, error) {
	const op = "paymentgateway.CheckStatus"
	payload := map[string]any{
		"uuid": externalID,
	}

	req, err := c.newRequest(ctx, "/payment/info", payload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return NormalizeStatus(resp.Result.Status), nil
}
