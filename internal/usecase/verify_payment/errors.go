package verify_payment

import "errors"

var (
	// ErrInvalidSignature возвращается при неверной подписи callback'а.
	// Никакие изменения состояния при этом не выполняются.
	ErrInvalidSignature = errors.New("verify_payment: invalid gateway signature")

	// ErrBookingNotFound возвращается, когда по ордеру и bookingId не
	// нашлось ни одного бронирования
	ErrBookingNotFound = errors.New("verify_payment: booking not found")

	// ErrWrongState возвращается, когда найденные бронирования уже отменены
	ErrWrongState = errors.New("verify_payment: booking is not in a confirmable state")

	// ErrSlotUnavailable возвращается при позднем callback'е: удержание
	// истекло и слот ушел другому пользователю. Штатная конкуренция,
	// а не нарушение консистентности
	ErrSlotUnavailable = errors.New("verify_payment: slot is no longer held for this booking")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("verify_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase.
	// Сюда же попадают нарушения консистентности (подтверждение прошло
	// не по всем строкам) — они сигнал о баге, а не о бизнес-условии.
	ErrInternal = errors.New("verify_payment: internal error")
)
