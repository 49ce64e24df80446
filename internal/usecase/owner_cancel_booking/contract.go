package owner_cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingstore "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, params bookingstore.CancelParams) error
	CountMonthlyCancellations(ctx context.Context, role domain.CancellationRole, actorID int64, monthStart time.Time) (int, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ReleaseIfClaimed(ctx context.Context, id int64) error
}

// EarningsRepository интерфейс репозитория заработков (учет штрафов)
type EarningsRepository interface {
	AddOwnerPenalty(ctx context.Context, ownerID int64, amount float64) error
}

// FacilityServiceClient интерфейс клиента сервиса площадок
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*facilityservice.Facility, error)
}

// PaymentGateway интерфейс платежного шлюза (возврат средств)
type PaymentGateway interface {
	Refund(ctx context.Context, paymentID string, amountMinor int64) error
}

// NotifierClient интерфейс клиента уведомлений
type NotifierClient interface {
	Notify(ctx context.Context, recipient string, kind notifier.TemplateKind, payload map[string]string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
