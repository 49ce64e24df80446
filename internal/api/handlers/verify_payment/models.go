package verify_payment

import (
	verifyPayment "github.com/m04kA/Turf-BookingService/internal/usecase/verify_payment"
)

// VerifyPaymentRequest HTTP request model (callback платежного шлюза)
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	BookingID int64  `json:"bookingId,omitempty"` // legacy-поток с одним слотом
}

// VerifyPaymentResponse HTTP response model
type VerifyPaymentResponse struct {
	ConfirmedBookingIDs []int64 `json:"confirmedBookingIds"`
	AlreadyConfirmed    bool    `json:"alreadyConfirmed,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *VerifyPaymentRequest) ToUseCaseRequest() *verifyPayment.Request {
	return &verifyPayment.Request{
		GatewayOrderID:   r.OrderID,
		GatewayPaymentID: r.PaymentID,
		GatewaySignature: r.Signature,
		BookingID:        r.BookingID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *verifyPayment.Response) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		ConfirmedBookingIDs: resp.ConfirmedBookingIDs,
		AlreadyConfirmed:    resp.AlreadyConfirmed,
	}
}
