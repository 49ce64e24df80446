package models

import (
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
)

// Request модели

// CreateSlotRequest запрос на создание одиночного слота
type CreateSlotRequest struct {
	OwnerID    int64   `json:"ownerId"`
	FacilityID int64   `json:"facilityId"`
	Date       string  `json:"date"`      // "2026-09-15"
	StartTime  string  `json:"startTime"` // "10:00"
	EndTime    string  `json:"endTime"`   // "11:00"
	Price      float64 `json:"price"`
}

// CreateSlotGridRequest запрос на создание сетки слотов на день:
// рабочий интервал нарезается на слоты одинаковой длины
type CreateSlotGridRequest struct {
	OwnerID     int64   `json:"ownerId"`
	FacilityID  int64   `json:"facilityId"`
	Date        string  `json:"date"`
	OpenTime    string  `json:"openTime"`  // "06:00"
	CloseTime   string  `json:"closeTime"` // "23:00"
	SlotMinutes int     `json:"slotMinutes"`
	Price       float64 `json:"price"`
}

// GetAvailableSlotsRequest запрос на список слотов площадки на дату
type GetAvailableSlotsRequest struct {
	FacilityID int64
	Date       time.Time
	UserID     int64 // для чьей точки зрения считать held-слоты
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID         int64   `json:"id"`
	FacilityID int64   `json:"facilityId"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []*SlotResponse `json:"slots"`
	Total int             `json:"total"`
}

// FromDomainSlot конвертирует domain модель в response.
// Статус отдается с точки зрения наблюдателя в момент now: истекшее
// удержание видно как available, чужое действующее — как held.
func FromDomainSlot(s *domain.Slot, userID int64, now time.Time) *SlotResponse {
	status := s.Status
	if s.Status == domain.SlotHeld && s.IsAvailableFor(userID, now) {
		status = domain.SlotAvailable
	}

	return &SlotResponse{
		ID:         s.ID,
		FacilityID: s.FacilityID,
		Date:       s.Date.Format(domain.DateFormat),
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		Price:      s.Price,
		Status:     string(status),
	}
}

// FromDomainSlotList конвертирует список domain моделей в response
func FromDomainSlotList(slots []*domain.Slot, userID int64, now time.Time) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]*SlotResponse, 0, len(slots)),
		Total: len(slots),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, FromDomainSlot(s, userID, now))
	}
	return resp
}
