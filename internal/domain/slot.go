package domain

import (
	"time"

	"github.com/m04kA/Turf-BookingService/pkg/types"
)

// SlotStatus статус слота
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotHeld      SlotStatus = "held"
	SlotBooked    SlotStatus = "booked"
)

// Slot временной слот на площадке, доступный для бронирования.
// Слот — единственная точка сериализации при конкурентных бронированиях:
// все переходы статуса выполняются условными UPDATE'ами по текущему статусу.
type Slot struct {
	ID         int64
	FacilityID int64
	OwnerID    int64 // ID владельца площадки (денормализация для проверок прав)
	Date       time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Price      float64
	Status     SlotStatus

	// HeldBy и HeldUntil заполнены только для status = held
	HeldBy    *int64
	HeldUntil *time.Time

	// IsBooked legacy-зеркало status = booked, поддерживается синхронно
	IsBooked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAvailableFor возвращает true, если слот может быть захвачен пользователем:
// свободен, удержан им же (идемпотентный повторный захват) или удержание истекло
func (s *Slot) IsAvailableFor(userID int64, now time.Time) bool {
	switch s.Status {
	case SlotAvailable:
		return true
	case SlotHeld:
		if s.HeldBy != nil && *s.HeldBy == userID {
			return true
		}
		return s.HoldExpired(now)
	default:
		return false
	}
}

// HoldExpired возвращает true, если удержание слота истекло
func (s *Slot) HoldExpired(now time.Time) bool {
	return s.Status == SlotHeld && s.HeldUntil != nil && s.HeldUntil.Before(now)
}

// StartDateTime совмещает дату и время начала слота.
// Если дата или время не заданы, возвращает нулевой time.Time —
// вызывающий код обязан трактовать это консервативно (возврат 0%).
func (s *Slot) StartDateTime() time.Time {
	if s.Date.IsZero() || s.StartTime.IsZero() {
		return time.Time{}
	}
	start, err := s.StartTime.At(s.Date)
	if err != nil {
		return time.Time{}
	}
	return start
}
