package models

import (
	"errors"
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetFacilityBookingsRequest запрос на получение бронирований площадки.
// Доступно только владельцу площадки.
type GetFacilityBookingsRequest struct {
	OwnerID    int64      `json:"ownerId"`
	FacilityID int64      `json:"facilityId"`
	Date       *time.Time `json:"date,omitempty"`   // Фильтр по дате слота (опционально)
	Status     *string    `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetFacilityBookingsRequest) ToDomainFilter() (domain.FacilityBookingsFilter, error) {
	filter := domain.FacilityBookingsFilter{
		FacilityID: r.FacilityID,
		Date:       r.Date,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64      `json:"id"`
	UserID             int64      `json:"userId"`
	SlotID             int64      `json:"slotId"`
	FacilityID         int64      `json:"facilityId"`
	Status             string     `json:"status"`
	TotalAmount        float64    `json:"totalAmount"`
	GatewayOrderID     *string    `json:"gatewayOrderId,omitempty"`
	RefundAmount       float64    `json:"refundAmount"`
	RefundPercent      int        `json:"refundPercent"`
	PenaltyApplied     float64    `json:"penaltyApplied"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Total    int                `json:"total"`
}

// FromDomainBooking конвертирует domain модель в response
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                 b.ID,
		UserID:             b.UserID,
		SlotID:             b.SlotID,
		FacilityID:         b.FacilityID,
		Status:             string(b.Status),
		TotalAmount:        b.TotalAmount,
		GatewayOrderID:     b.GatewayOrderID,
		RefundAmount:       b.RefundAmount,
		RefundPercent:      b.RefundPercent,
		PenaltyApplied:     b.PenaltyApplied,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в response
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]*BookingResponse, 0, len(bookings)),
		Total:    len(bookings),
	}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, FromDomainBooking(b))
	}
	return resp
}

// ToDomainBookingStatus конвертирует строку в domain статус
func ToDomainBookingStatus(s string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(s) {
	case domain.StatusPending, domain.StatusConfirmed,
		domain.StatusCancelledByPlayer, domain.StatusCancelledByOwner,
		domain.StatusExpired:
		return domain.BookingStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}
