package reserve_slots

import (
	"time"

	reserveSlots "github.com/m04kA/Turf-BookingService/internal/usecase/reserve_slots"
)

// ReserveSlotsRequest HTTP request model
type ReserveSlotsRequest struct {
	SlotIDs []int64 `json:"slotIds"`
}

// ReserveSlotsResponse HTTP response model
type ReserveSlotsResponse struct {
	BookingIDs  []int64 `json:"bookingIds"`
	OrderID     string  `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
	AmountMinor int64   `json:"amountMinor"`
	HeldUntil   string  `json:"heldUntil"`
}

// UnavailableSlotsResponse тело ответа 409 со списком занятых слотов
type UnavailableSlotsResponse struct {
	Error              string  `json:"error"`
	UnavailableSlotIDs []int64 `json:"unavailableSlotIds"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveSlotsRequest) ToUseCaseRequest(userID int64) *reserveSlots.Request {
	return &reserveSlots.Request{
		UserID:  userID,
		SlotIDs: r.SlotIDs,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSlots.Response) *ReserveSlotsResponse {
	return &ReserveSlotsResponse{
		BookingIDs:  resp.BookingIDs,
		OrderID:     resp.OrderID,
		TotalAmount: resp.TotalAmount,
		AmountMinor: resp.AmountMinor,
		HeldUntil:   resp.HeldUntil.Format(time.RFC3339),
	}
}
