package facilityservice

// FacilityStatus статус модерации площадки
type FacilityStatus string

const (
	StatusApproved FacilityStatus = "approved"
	StatusPending  FacilityStatus = "pending"
	StatusRejected FacilityStatus = "rejected"
)

// Facility площадка (турф) из сервиса площадок
type Facility struct {
	ID           int64          `json:"id"`
	OwnerID      int64          `json:"ownerId"`
	Name         string         `json:"name"`
	Status       FacilityStatus `json:"status"`
	OwnerContact string         `json:"ownerContact"`
}

// IsApproved возвращает true, если листинг площадки прошел модерацию
func (f *Facility) IsApproved() bool {
	return f.Status == StatusApproved
}
