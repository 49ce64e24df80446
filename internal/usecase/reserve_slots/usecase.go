package reserve_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	facilityClient "github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
)

// UseCase use case резервирования слотов: захват выбранных слотов
// целиком-или-никак и открытие одного внешнего платежного ордера.
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	facilities   FacilityServiceClient
	gateway      PaymentGateway
	txManager    TransactionManager
	timeProvider TimeProvider
	policy       domain.CancellationPolicy
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	facilities FacilityServiceClient,
	gateway PaymentGateway,
	txManager TransactionManager,
	policy domain.CancellationPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		facilities:   facilities,
		gateway:      gateway,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		policy:       policy,
		logger:       logger,
	}
}

// Execute выполняет резервирование.
//
// Два конкурентных запроса на один слот не могут пройти оба: захват
// выполняется условным UPDATE внутри сериализуемой транзакции, а
// количество затронутых строк сверяется с запрошенным. Чтение
// доступности с проверкой в коде приложения используется только для
// диагностики (каких именно слотов не хватило).
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSlots: user=%d, slots=%v", req.UserID, req.SlotIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	heldUntil := now.Add(uc.policy.HoldTTL)

	// 2. Предварительное чтение слотов вне транзакции: узнаем площадки
	// и владельца до внешних вызовов
	slots, err := uc.slotRepo.GetByIDs(ctx, req.SlotIDs)
	if err != nil {
		uc.logger.Error("ReserveSlots: failed to read slots: %v", err)
		return nil, fmt.Errorf("%w: failed to read slots: %v", ErrInternal, err)
	}
	if len(slots) != len(req.SlotIDs) {
		uc.logger.Warn("ReserveSlots: requested %d slots, found %d", len(req.SlotIDs), len(slots))
		return nil, ErrSlotNotFound
	}

	// 3. Все слоты должны принадлежать одному владельцу: один ордер
	// расчитывается на одного получателя
	ownerID := slots[0].OwnerID
	for _, s := range slots {
		if s.OwnerID != ownerID {
			uc.logger.Warn("ReserveSlots: slots span owners %d and %d", ownerID, s.OwnerID)
			return nil, ErrOwnershipMismatch
		}
	}

	// 4. Листинги всех затронутых площадок должны быть approved
	if err := uc.checkFacilitiesApproved(ctx, slots); err != nil {
		return nil, err
	}

	var (
		bookingIDs []int64
		total      float64
	)

	// 5. Захват слотов и создание pending-бронирований в сериализуемой
	// транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Повторное чтение кандидатов уже под блокировкой (FOR UPDATE)
		txSlots, err := uc.slotRepo.GetByIDs(txCtx, req.SlotIDs)
		if err != nil {
			return fmt.Errorf("%w: failed to re-read slots: %v", ErrInternal, err)
		}
		if len(txSlots) != len(req.SlotIDs) {
			return ErrSlotNotFound
		}

		// 5.2. Диагностика: каких слотов не хватает. Сам захват ниже
		// защищен условием в UPDATE, это чтение только формирует ответ.
		var unavailable []int64
		for _, s := range txSlots {
			if !s.IsAvailableFor(req.UserID, now) {
				unavailable = append(unavailable, s.ID)
			}
		}
		if len(unavailable) > 0 {
			return &SlotsUnavailableError{SlotIDs: unavailable}
		}

		// 5.3. Атомарный захват: available (или истекший/свой hold) -> held
		claimed, err := uc.slotRepo.ClaimForUser(txCtx, req.SlotIDs, req.UserID, heldUntil, now)
		if err != nil {
			return fmt.Errorf("%w: failed to claim slots: %v", ErrInternal, err)
		}
		if claimed != int64(len(req.SlotIDs)) {
			// Конкурент успел между чтением и UPDATE — условный UPDATE
			// это отсек, откатываем всё
			return &SlotsUnavailableError{SlotIDs: req.SlotIDs}
		}

		// 5.4. Одно pending-бронирование на слот; цена фиксируется сейчас
		// и не перечитывается при подтверждении
		bookingIDs = bookingIDs[:0]
		total = 0
		for _, s := range txSlots {
			created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
				UserID:      req.UserID,
				SlotID:      s.ID,
				FacilityID:  s.FacilityID,
				OwnerID:     s.OwnerID,
				Status:      domain.StatusPending,
				TotalAmount: s.Price,
			})
			if err != nil {
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}
			bookingIDs = append(bookingIDs, created.ID)
			total += s.Price
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// 6. Внешний ордер открывается после фиксации транзакции: зависший
	// вызов шлюза не должен держать блокировки БД. Неудача компенсируется
	// освобождением слотов и удалением pending-строк.
	amountMinor := paymentgw.MinorUnits(total)

	order, err := uc.gateway.CreateOrder(ctx, amountMinor)
	if err != nil {
		uc.logger.Error("ReserveSlots: gateway order failed for user=%d, compensating: %v", req.UserID, err)
		uc.compensate(ctx, req.SlotIDs, bookingIDs)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGatewayUnavailable, err)
	}

	// 7. Привязываем общий ордер ко всем бронированиям попытки
	if err := uc.bookingRepo.SetGatewayOrder(ctx, bookingIDs, order.ID); err != nil {
		uc.logger.Error("ReserveSlots: failed to link order %s, compensating: %v", order.ID, err)
		uc.compensate(ctx, req.SlotIDs, bookingIDs)
		return nil, fmt.Errorf("%w: failed to link gateway order: %v", ErrInternal, err)
	}

	uc.logger.Info("ReserveSlots: user=%d reserved %d slots, order=%s, amount=%d minor units",
		req.UserID, len(req.SlotIDs), order.ID, amountMinor)

	return &Response{
		BookingIDs:  bookingIDs,
		OrderID:     order.ID,
		TotalAmount: total,
		AmountMinor: amountMinor,
		HeldUntil:   heldUntil,
	}, nil
}

// checkFacilitiesApproved проверяет статус модерации всех площадок выборки
func (uc *UseCase) checkFacilitiesApproved(ctx context.Context, slots []*domain.Slot) error {
	checked := make(map[int64]struct{})

	for _, s := range slots {
		if _, ok := checked[s.FacilityID]; ok {
			continue
		}
		checked[s.FacilityID] = struct{}{}

		facility, err := uc.facilities.GetFacility(ctx, s.FacilityID)
		if err != nil {
			if errors.Is(err, facilityClient.ErrFacilityNotFound) {
				uc.logger.Warn("ReserveSlots: facility id=%d not found", s.FacilityID)
				return ErrFacilityNotApproved
			}
			uc.logger.Error("ReserveSlots: failed to get facility id=%d: %v", s.FacilityID, err)
			return fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
		}

		if !facility.IsApproved() {
			uc.logger.Warn("ReserveSlots: facility id=%d is not approved (status=%s)", facility.ID, facility.Status)
			return ErrFacilityNotApproved
		}
	}

	return nil
}

// compensate освобождает захваченные слоты и удаляет pending-бронирования
// после неудачного открытия ордера. Слоты не должны остаться в held.
func (uc *UseCase) compensate(ctx context.Context, slotIDs, bookingIDs []int64) {
	if err := uc.slotRepo.ReleaseMany(ctx, slotIDs); err != nil {
		// Удержание истечет по TTL и его подберет sweeper
		uc.logger.Error("ReserveSlots: compensation failed to release slots %v: %v", slotIDs, err)
	}
	if len(bookingIDs) > 0 {
		if err := uc.bookingRepo.Delete(ctx, bookingIDs); err != nil {
			uc.logger.Error("ReserveSlots: compensation failed to delete bookings %v: %v", bookingIDs, err)
		}
	}
}
