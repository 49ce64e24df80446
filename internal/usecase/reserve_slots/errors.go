package reserve_slots

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotUnavailable возвращается, когда хотя бы один из выбранных
	// слотов уже захвачен другим пользователем. Частичное резервирование
	// не выполняется.
	ErrSlotUnavailable = errors.New("reserve_slots: slot is not available")

	// ErrSlotNotFound возвращается, когда часть выбранных слотов не существует
	ErrSlotNotFound = errors.New("reserve_slots: slot not found")

	// ErrOwnershipMismatch возвращается, когда выбранные слоты принадлежат
	// разным владельцам: один ордер расчитывается на одного получателя
	ErrOwnershipMismatch = errors.New("reserve_slots: slots belong to different facility owners")

	// ErrFacilityNotApproved возвращается, когда листинг площадки не прошел модерацию
	ErrFacilityNotApproved = errors.New("reserve_slots: facility is not approved")

	// ErrPaymentGatewayUnavailable возвращается при недоступности платежного
	// шлюза; удержания слотов компенсируются
	ErrPaymentGatewayUnavailable = errors.New("reserve_slots: payment gateway unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slots: internal error")
)

// SlotsUnavailableError уточняет ErrSlotUnavailable списком недоступных
// слотов: клиент перерисовывает доступность, а не повторяет запрос вслепую
type SlotsUnavailableError struct {
	SlotIDs []int64
}

// Error реализует error
func (e *SlotsUnavailableError) Error() string {
	return fmt.Sprintf("reserve_slots: slots %v are not available", e.SlotIDs)
}

// Is сопоставляет ошибку с ErrSlotUnavailable для errors.Is
func (e *SlotsUnavailableError) Is(target error) bool {
	return target == ErrSlotUnavailable
}
