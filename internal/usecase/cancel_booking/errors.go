package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied возвращается при попытке отменить чужое бронирование
	ErrAccessDenied = errors.New("cancel_booking: booking belongs to another user")

	// ErrWrongState возвращается для бронирования в терминальном статусе
	ErrWrongState = errors.New("cancel_booking: booking is already cancelled")

	// ErrTooLateToCancel возвращается при отмене после начала слота
	ErrTooLateToCancel = errors.New("cancel_booking: slot has already started")

	// ErrMonthlyCancelLimitReached возвращается при исчерпанной квоте
	// отмен за календарный месяц
	ErrMonthlyCancelLimitReached = errors.New("cancel_booking: monthly cancellation limit reached")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
