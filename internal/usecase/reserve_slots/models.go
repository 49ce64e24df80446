package reserve_slots

import "time"

// Request модель запроса на резервирование слотов
type Request struct {
	UserID  int64   // ID игрока
	SlotIDs []int64 // Выбранные слоты (все должны принадлежать одному владельцу)
}

// Response модель ответа с созданными бронированиями и внешним ордером
type Response struct {
	BookingIDs  []int64   // ID созданных pending-бронирований
	OrderID     string    // ID ордера во внешнем шлюзе
	TotalAmount float64   // Сумма к оплате (в основных единицах валюты)
	AmountMinor int64     // Та же сумма в минорных единицах, отправленная шлюзу
	HeldUntil   time.Time // Момент истечения удержания слотов
}
