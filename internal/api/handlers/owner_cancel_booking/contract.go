package owner_cancel_booking

import (
	"context"

	ownerCancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/owner_cancel_booking"
)

type OwnerCancelBookingUseCase interface {
	Execute(ctx context.Context, req *ownerCancelBooking.Request) (*ownerCancelBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
