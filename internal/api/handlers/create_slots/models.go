package create_slots

import (
	"github.com/m04kA/Turf-BookingService/internal/service/slots/models"
)

// CreateSlotRequest HTTP request model для одиночного слота
type CreateSlotRequest struct {
	FacilityID int64   `json:"facilityId"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Price      float64 `json:"price"`
}

// CreateSlotGridRequest HTTP request model для сетки слотов на день
type CreateSlotGridRequest struct {
	FacilityID  int64   `json:"facilityId"`
	Date        string  `json:"date"`
	OpenTime    string  `json:"openTime"`
	CloseTime   string  `json:"closeTime"`
	SlotMinutes int     `json:"slotMinutes"`
	Price       float64 `json:"price"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateSlotRequest) ToServiceRequest(ownerID int64) *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		OwnerID:    ownerID,
		FacilityID: r.FacilityID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Price:      r.Price,
	}
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateSlotGridRequest) ToServiceRequest(ownerID int64) *models.CreateSlotGridRequest {
	return &models.CreateSlotGridRequest{
		OwnerID:     ownerID,
		FacilityID:  r.FacilityID,
		Date:        r.Date,
		OpenTime:    r.OpenTime,
		CloseTime:   r.CloseTime,
		SlotMinutes: r.SlotMinutes,
		Price:       r.Price,
	}
}
