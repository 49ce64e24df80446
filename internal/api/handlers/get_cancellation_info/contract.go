package get_cancellation_info

import (
	"context"

	cancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/cancel_booking"
)

type CancelBookingUseCase interface {
	GetCancellationInfo(ctx context.Context, bookingID, userID int64) (*cancelBooking.InfoResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
