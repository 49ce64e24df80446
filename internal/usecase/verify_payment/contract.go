package verify_payment

import (
	"context"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByGatewayOrderID(ctx context.Context, orderID string) ([]*domain.Booking, error)
	ConfirmPending(ctx context.Context, ids []int64, paymentID string) (int64, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	MarkBooked(ctx context.Context, ids []int64, userID int64) (int64, error)
}

// EarningsRepository интерфейс репозитория заработков (best-effort)
type EarningsRepository interface {
	AddOwnerEarning(ctx context.Context, ownerID int64, amount float64) error
	AddPlatformFee(ctx context.Context, amount float64) error
}

// SignatureVerifier проверка подписи callback'а шлюза
type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

// NotifierClient интерфейс клиента уведомлений (fire-and-forget)
type NotifierClient interface {
	Notify(ctx context.Context, recipient string, kind notifier.TemplateKind, payload map[string]string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
