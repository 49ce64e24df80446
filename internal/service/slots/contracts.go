package slots

import (
	"context"
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error)
	CreateBatch(ctx context.Context, slots []*domain.Slot) error
	GetByFacilityAndDate(ctx context.Context, facilityID int64, date time.Time) ([]*domain.Slot, error)
	HasOverlap(ctx context.Context, facilityID int64, date time.Time, startTime, endTime string) (bool, error)
}

// FacilityServiceClient интерфейс клиента сервиса площадок
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*facilityservice.Facility, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
