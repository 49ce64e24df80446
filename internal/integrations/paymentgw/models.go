package paymentgw

// Order внешний платежный ордер, открытый у шлюза
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // в минорных единицах валюты
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// createOrderRequest тело запроса создания ордера
type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// refundRequest тело запроса возврата
type refundRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}
