package cancel_booking

// Request модель запроса на отмену бронирования игроком
type Request struct {
	BookingID int64
	UserID    int64
}

// Response модель результата отмены
type Response struct {
	BookingID              int64
	RefundAmount           float64
	RefundPercent          int
	CancellationsRemaining int
}

// InfoResponse read-only превью отмены: та же политика, без мутаций
type InfoResponse struct {
	BookingID              int64
	CanCancel              bool
	Reason                 string // причина запрета, пустая при CanCancel=true
	RefundAmount           float64
	RefundPercent          int
	CancellationsRemaining int
}
