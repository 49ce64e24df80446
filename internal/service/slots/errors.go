package slots

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = errors.New("facility not found")

	// ErrAccessDenied возвращается, когда площадка принадлежит другому владельцу
	ErrAccessDenied = errors.New("access denied")

	// ErrSlotOverlap возвращается при пересечении с существующим слотом
	ErrSlotOverlap = errors.New("slot overlaps with an existing slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
