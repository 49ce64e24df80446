package bookings

import (
	"context"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error)
	GetByFacilityWithFilter(ctx context.Context, filter domain.FacilityBookingsFilter) ([]*domain.Booking, error)
}

// FacilityServiceClient интерфейс клиента сервиса площадок
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*facilityservice.Facility, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
