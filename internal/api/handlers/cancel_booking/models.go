package cancel_booking

import (
	cancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/cancel_booking"
)

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID              int64   `json:"bookingId"`
	RefundAmount           float64 `json:"refundAmount"`
	RefundPercent          int     `json:"refundPercent"`
	CancellationsRemaining int     `json:"cancellationsRemaining"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:              resp.BookingID,
		RefundAmount:           resp.RefundAmount,
		RefundPercent:          resp.RefundPercent,
		CancellationsRemaining: resp.CancellationsRemaining,
	}
}
