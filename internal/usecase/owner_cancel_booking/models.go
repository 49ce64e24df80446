package owner_cancel_booking

// Request модель запроса на отмену бронирования владельцем площадки
type Request struct {
	BookingID int64
	OwnerID   int64
	Reason    string
}

// Response модель результата отмены владельцем
type Response struct {
	BookingID              int64
	RefundToPlayer         float64 // всегда 100% суммы бронирования
	Penalty                float64 // штраф владельца (комиссия + сбор платформы)
	CancellationsRemaining int
}
