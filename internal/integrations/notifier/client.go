package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// TemplateKind вид уведомления
type TemplateKind string

const (
	KindBookingConfirmed  TemplateKind = "booking-confirmed"
	KindCancelledByPlayer TemplateKind = "cancelled-by-player"
	KindCancelledByOwner  TemplateKind = "cancelled-by-owner"
)

var (
	// ErrDeliveryFailed возвращается при любой ошибке доставки.
	// Вызывающий код обязан только залогировать её: уведомления
	// fire-and-forget и никогда не валят основной запрос.
	ErrDeliveryFailed = errors.New("notifier: delivery failed")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса уведомлений
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type notifyRequest struct {
	Recipient string            `json:"recipient"`
	Kind      TemplateKind      `json:"kind"`
	Context   map[string]string `json:"context"`
}

// Notify отправляет уведомление получателю
func (c *Client) Notify(ctx context.Context, recipient string, kind TemplateKind, payload map[string]string) error {
	body, err := json.Marshal(notifyRequest{
		Recipient: recipient,
		Kind:      kind,
		Context:   payload,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrDeliveryFailed, err)
	}

	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrDeliveryFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: unexpected status code %d", ErrDeliveryFailed, resp.StatusCode)
	}

	return nil
}
