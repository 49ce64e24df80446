package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo    BookingRepository
	facilityClient FacilityServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	facilityClient FacilityServiceClient,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		facilityClient: facilityClient,
		logger:         logger,
	}
}

// GetByID получает бронирование по ID.
// Бронирование видят только две стороны сделки: игрок, который его
// создал, и владелец площадки слота.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID && booking.OwnerID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя.
// Опционально фильтрует по статусу.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	filter := domain.UserBookingsFilter{UserID: req.UserID}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetFacilityBookings получает бронирования площадки с фильтрацией по
// дате и статусу. Доступно только владельцу площадки.
func (s *Service) GetFacilityBookings(ctx context.Context, req *models.GetFacilityBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetFacilityBookings: fetching bookings for facility=%d, owner=%d", req.FacilityID, req.OwnerID)

	if err := s.checkOwnerAccess(ctx, req.FacilityID, req.OwnerID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetFacilityBookings: invalid filter for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByFacilityWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetFacilityBookings: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: GetFacilityBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetFacilityBookings: fetched %d bookings for facility=%d", len(bookings), req.FacilityID)
	return models.FromDomainBookingList(bookings), nil
}

// checkOwnerAccess проверяет через сервис площадок, что площадка
// принадлежит вызывающему владельцу
func (s *Service) checkOwnerAccess(ctx context.Context, facilityID, ownerID int64) error {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			return ErrAccessDenied
		}
		s.logger.Error("checkOwnerAccess: facility service error for facility=%d: %v", facilityID, err)
		return fmt.Errorf("%w: checkOwnerAccess - facility service error: %v", ErrInternal, err)
	}
	if facility.OwnerID != ownerID {
		s.logger.Warn("checkOwnerAccess: user=%d is not the owner of facility=%d", ownerID, facilityID)
		return ErrAccessDenied
	}
	return nil
}
