package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/service/slots/models"
	"github.com/m04kA/Turf-BookingService/pkg/types"
)

// Service сервис управления слотами площадок
type Service struct {
	slotRepo       SlotRepository
	facilityClient FacilityServiceClient
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	facilityClient FacilityServiceClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:       slotRepo,
		facilityClient: facilityClient,
		txManager:      txManager,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// CreateSlot создает одиночный слот на площадке владельца.
// Пересечение по времени с существующим слотом площадки запрещено.
func (s *Service) CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: facility=%d date=%s %s-%s", req.FacilityID, req.Date, req.StartTime, req.EndTime)

	facility, err := s.checkOwner(ctx, req.FacilityID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	slot, err := s.buildSlot(req, facility.OwnerID)
	if err != nil {
		return nil, err
	}

	var created *domain.Slot
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		overlap, err := s.slotRepo.HasOverlap(txCtx, slot.FacilityID, slot.Date,
			slot.StartTime.String(), slot.EndTime.String())
		if err != nil {
			return fmt.Errorf("%w: CreateSlot - overlap check: %v", ErrInternal, err)
		}
		if overlap {
			return ErrSlotOverlap
		}

		created, err = s.slotRepo.Create(txCtx, slot)
		if err != nil {
			return fmt.Errorf("%w: CreateSlot - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateSlot: created slot id=%d for facility=%d", created.ID, req.FacilityID)
	return models.FromDomainSlot(created, req.OwnerID, s.timeProvider.Now()), nil
}

// CreateSlotGrid создает сетку слотов на день: рабочий интервал
// нарезается на слоты по slotMinutes. Хвост короче слота отбрасывается.
func (s *Service) CreateSlotGrid(ctx context.Context, req *models.CreateSlotGridRequest) (*models.SlotListResponse, error) {
	s.logger.Info("CreateSlotGrid: facility=%d date=%s %s-%s step=%dm",
		req.FacilityID, req.Date, req.OpenTime, req.CloseTime, req.SlotMinutes)

	facility, err := s.checkOwner(ctx, req.FacilityID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	slots, err := s.buildGrid(req, facility.OwnerID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		for _, slot := range slots {
			overlap, err := s.slotRepo.HasOverlap(txCtx, slot.FacilityID, slot.Date,
				slot.StartTime.String(), slot.EndTime.String())
			if err != nil {
				return fmt.Errorf("%w: CreateSlotGrid - overlap check: %v", ErrInternal, err)
			}
			if overlap {
				return fmt.Errorf("%w: %s-%s", ErrSlotOverlap, slot.StartTime, slot.EndTime)
			}
		}
		if err := s.slotRepo.CreateBatch(txCtx, slots); err != nil {
			return fmt.Errorf("%w: CreateSlotGrid - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateSlotGrid: created %d slots for facility=%d", len(slots), req.FacilityID)
	return models.FromDomainSlotList(slots, req.OwnerID, s.timeProvider.Now()), nil
}

// GetAvailableSlots возвращает слоты площадки на дату.
// Истекшие удержания отдаются как available, не дожидаясь sweeper'а.
func (s *Service) GetAvailableSlots(ctx context.Context, req *models.GetAvailableSlotsRequest) (*models.SlotListResponse, error) {
	slots, err := s.slotRepo.GetByFacilityAndDate(ctx, req.FacilityID, req.Date)
	if err != nil {
		s.logger.Error("GetAvailableSlots: repository error for facility=%d: %v", req.FacilityID, err)
		return nil, fmt.Errorf("%w: GetAvailableSlots - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotList(slots, req.UserID, s.timeProvider.Now()), nil
}

// checkOwner проверяет существование площадки и права владельца
func (s *Service) checkOwner(ctx context.Context, facilityID, ownerID int64) (*facilityservice.Facility, error) {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("checkOwner: facility service error for facility=%d: %v", facilityID, err)
		return nil, fmt.Errorf("%w: checkOwner - facility service error: %v", ErrInternal, err)
	}
	if facility.OwnerID != ownerID {
		s.logger.Warn("checkOwner: user=%d is not the owner of facility=%d", ownerID, facilityID)
		return nil, ErrAccessDenied
	}
	return facility, nil
}

// buildSlot валидирует запрос и собирает domain модель слота
func (s *Service) buildSlot(req *models.CreateSlotRequest, ownerID int64) (*domain.Slot, error) {
	date, startTime, endTime, err := parseSlotTimes(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	startMin, _ := startTime.Minutes()
	endMin, _ := endTime.Minutes()
	duration := endMin - startMin
	if duration < domain.MinSlotDurationMinutes || duration > domain.MaxSlotDurationMinutes {
		return nil, fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	return &domain.Slot{
		FacilityID: req.FacilityID,
		OwnerID:    ownerID,
		Date:       date,
		StartTime:  startTime,
		EndTime:    endTime,
		Price:      req.Price,
		Status:     domain.SlotAvailable,
	}, nil
}

// buildGrid валидирует запрос и нарезает рабочий интервал на слоты
func (s *Service) buildGrid(req *models.CreateSlotGridRequest, ownerID int64) ([]*domain.Slot, error) {
	date, openTime, closeTime, err := parseSlotTimes(req.Date, req.OpenTime, req.CloseTime)
	if err != nil {
		return nil, err
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if req.SlotMinutes < domain.MinSlotDurationMinutes || req.SlotMinutes > domain.MaxSlotDurationMinutes {
		return nil, fmt.Errorf("%w: slotMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	var slots []*domain.Slot
	cursor := openTime
	for {
		next, err := cursor.AddMinutes(req.SlotMinutes)
		if err != nil || next.IsAfter(closeTime) {
			break
		}
		slots = append(slots, &domain.Slot{
			FacilityID: req.FacilityID,
			OwnerID:    ownerID,
			Date:       date,
			StartTime:  cursor,
			EndTime:    next,
			Price:      req.Price,
			Status:     domain.SlotAvailable,
		})
		cursor = next
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: working interval is shorter than one slot", ErrInvalidInput)
	}
	return slots, nil
}

// parseSlotTimes разбирает дату и границы слота из строковых полей запроса
func parseSlotTimes(dateStr, startStr, endStr string) (time.Time, types.TimeString, types.TimeString, error) {
	var zero types.TimeString

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, zero, zero, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrInvalidInput)
	}

	startTime, err := types.ParseTimeString(startStr)
	if err != nil {
		return time.Time{}, zero, zero, fmt.Errorf("%w: invalid start time format, expected HH:MM", ErrInvalidInput)
	}
	endTime, err := types.ParseTimeString(endStr)
	if err != nil {
		return time.Time{}, zero, zero, fmt.Errorf("%w: invalid end time format, expected HH:MM", ErrInvalidInput)
	}
	if !startTime.IsBefore(endTime) {
		return time.Time{}, zero, zero, fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}

	return date, startTime, endTime, nil
}
