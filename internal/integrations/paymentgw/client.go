package paymentgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент внешнего платежного шлюза (order/charge/refund API).
// Таймаут обязателен: зависший вызов шлюза не должен держать слоты
// в held дольше времени жизни удержания.
type Client struct {
	baseURL    string
	keyID      string
	secret     string
	currency   string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL, keyID, secret, currency string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		keyID:    keyID,
		secret:   secret,
		currency: currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// MinorUnits конвертирует сумму в минорные единицы валюты (умножение
// на 100 для валют с двумя знаками). Округление до ближайшего, а не
// усечение: тихая потеря пайсы ломает сверку с шлюзом.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder открывает у шлюза ордер на сумму в минорных единицах.
// Одна попытка резервирования — ровно один ордер.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64) (*Order, error) {
	if c.keyID == "" || c.secret == "" {
		return nil, ErrNotConfigured
	}

	receipt := fmt.Sprintf("rcpt_%s", uuid.NewString())

	body, err := json.Marshal(createOrderRequest{
		Amount:   amountMinor,
		Currency: c.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInvalidResponse, err)
	}

	url := fmt.Sprintf("%s/v1/orders", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("CreateOrder: gateway request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	default:
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Error("CreateOrder: unexpected status %d: %s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrUnavailable, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrInvalidResponse)
	}

	c.log.Info("CreateOrder: order %s created for %d minor units (receipt=%s)", order.ID, amountMinor, receipt)
	return &order, nil
}

// Refund инициирует возврат платежа. Best-effort: вызывающий код
// логирует ошибку и не откатывает отмену бронирования.
func (c *Client) Refund(ctx context.Context, paymentID string, amountMinor int64) error {
	if c.keyID == "" || c.secret == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(refundRequest{
		PaymentID: paymentID,
		Amount:    amountMinor,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInvalidResponse, err)
	}

	url := fmt.Sprintf("%s/v1/refunds", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	c.log.Info("Refund: refund initiated for payment %s (%d minor units)", paymentID, amountMinor)
	return nil
}
