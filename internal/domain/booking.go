package domain

import "time"

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending           BookingStatus = "pending"
	StatusConfirmed         BookingStatus = "confirmed"
	StatusCancelledByPlayer BookingStatus = "cancelled_by_player"
	StatusCancelledByOwner  BookingStatus = "cancelled_by_owner"

	// StatusExpired брошенная корзина: удержание слота истекло, оплата
	// так и не подтвердилась. Не считается отменой ни одной из ролей и
	// не входит в месячные квоты.
	StatusExpired BookingStatus = "expired"
)

// Booking денежное требование пользователя на слот.
// TotalAmount фиксируется в момент создания по цене слота и больше
// никогда не пересчитывается — изменение цены слота не влияет на
// уже созданные бронирования.
type Booking struct {
	ID         int64
	UserID     int64
	SlotID     int64
	FacilityID int64 // денормализация для запросов квоты отмен
	OwnerID    int64 // денормализация для квоты владельца по всем его площадкам

	Status      BookingStatus
	TotalAmount float64

	// Ссылки на внешний платежный шлюз
	GatewayOrderID   *string
	GatewayPaymentID *string

	RefundAmount   float64
	RefundPercent  int
	PenaltyApplied float64

	CancellationReason *string // заполняется только при отмене владельцем
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal возвращает true, если бронирование в терминальном статусе.
// Из отмененного или истекшего статуса переходов нет.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelledByPlayer || b.Status == StatusCancelledByOwner || b.Status == StatusExpired
}

// CanBeCancelled возвращает true, если бронирование можно отменить
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsConfirmed возвращает true для подтвержденного бронирования
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// CancellationRole роль инициатора отмены для подсчета месячной квоты
type CancellationRole string

const (
	RolePlayer CancellationRole = "player"
	RoleOwner  CancellationRole = "owner"
)

// CancelledStatus возвращает статус отмены для роли
func (r CancellationRole) CancelledStatus() BookingStatus {
	if r == RoleOwner {
		return StatusCancelledByOwner
	}
	return StatusCancelledByPlayer
}

// UserBookingsFilter фильтр истории бронирований пользователя
type UserBookingsFilter struct {
	UserID int64
	Status *BookingStatus
}

// FacilityBookingsFilter фильтр бронирований площадки
type FacilityBookingsFilter struct {
	FacilityID int64
	Date       *time.Time
	Status     *BookingStatus
}
