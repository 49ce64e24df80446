package facilityservice

import "errors"

var (
	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = errors.New("facilityservice: facility not found")

	// ErrInvalidResponse возвращается при некорректном ответе сервиса
	ErrInvalidResponse = errors.New("facilityservice: invalid response")

	// ErrInternal возвращается при ошибках выполнения запроса
	ErrInternal = errors.New("facilityservice: internal error")
)
