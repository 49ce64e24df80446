package paymentgw

import "errors"

var (
	// ErrUnavailable возвращается, когда шлюз недоступен или вернул
	// неожиданный статус. Без вмешательства оператора повторять бессмысленно.
	ErrUnavailable = errors.New("paymentgw: payment gateway unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе шлюза
	ErrInvalidResponse = errors.New("paymentgw: invalid gateway response")

	// ErrNotConfigured возвращается, когда клиент создан без ключей
	ErrNotConfigured = errors.New("paymentgw: gateway credentials are not configured")
)
