package verify_payment

// Request модель callback'а платежного шлюза
type Request struct {
	GatewayOrderID   string // ID ордера у шлюза
	GatewayPaymentID string // ID платежа у шлюза
	GatewaySignature string // HMAC-подпись пары order|payment
	BookingID        int64  // Fallback для legacy-потока с одним слотом (0 = не задан)
}

// Response модель ответа с подтвержденными бронированиями
type Response struct {
	ConfirmedBookingIDs []int64
	AlreadyConfirmed    bool // true при повторном callback'е (идемпотентный ответ)
}
