package owner_cancel_booking

import (
	ownerCancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/owner_cancel_booking"
)

// OwnerCancelBookingRequest HTTP request model
type OwnerCancelBookingRequest struct {
	Reason string `json:"reason"`
}

// OwnerCancelBookingResponse HTTP response model
type OwnerCancelBookingResponse struct {
	BookingID              int64   `json:"bookingId"`
	RefundToPlayer         float64 `json:"refundToPlayer"`
	Penalty                float64 `json:"penalty"`
	CancellationsRemaining int     `json:"cancellationsRemaining"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *ownerCancelBooking.Response) *OwnerCancelBookingResponse {
	return &OwnerCancelBookingResponse{
		BookingID:              resp.BookingID,
		RefundToPlayer:         resp.RefundToPlayer,
		Penalty:                resp.Penalty,
		CancellationsRemaining: resp.CancellationsRemaining,
	}
}
