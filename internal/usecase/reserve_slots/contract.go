package reserve_slots

import (
	"context"
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Slot, error)
	ClaimForUser(ctx context.Context, ids []int64, userID int64, heldUntil, now time.Time) (int64, error)
	ReleaseMany(ctx context.Context, ids []int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	SetGatewayOrder(ctx context.Context, ids []int64, orderID string) error
	Delete(ctx context.Context, ids []int64) error
}

// FacilityServiceClient интерфейс клиента сервиса площадок
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*facilityservice.Facility, error)
}

// PaymentGateway интерфейс платежного шлюза
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64) (*paymentgw.Order, error)
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

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
