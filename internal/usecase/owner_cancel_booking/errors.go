package owner_cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("owner_cancel_booking: booking not found")

	// ErrUnauthorized возвращается, когда площадка бронирования
	// не принадлежит вызывающему владельцу
	ErrUnauthorized = errors.New("owner_cancel_booking: facility belongs to another owner")

	// ErrWrongState возвращается для бронирования в терминальном статусе
	ErrWrongState = errors.New("owner_cancel_booking: booking is already cancelled")

	// ErrInvalidReason возвращается для пустой или слишком короткой причины
	ErrInvalidReason = errors.New("owner_cancel_booking: cancellation reason is too short")

	// ErrMonthlyCancelLimitReached возвращается при исчерпанной квоте
	// отмен владельца за календарный месяц по всем его площадкам
	ErrMonthlyCancelLimitReached = errors.New("owner_cancel_booking: monthly cancellation limit reached")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("owner_cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("owner_cancel_booking: internal error")
)
