package owner_cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingstore "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
	"github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
)

// UseCase use case отмены бронирования владельцем площадки.
// Игрок всегда получает 100% возврата, штраф ложится на владельца
// и копится в owner_earnings как бухгалтерская запись.
type UseCase struct {
	bookingRepo    BookingRepository
	slotRepo       SlotRepository
	earnings       EarningsRepository
	facilityClient FacilityServiceClient
	gateway        PaymentGateway
	notifier       NotifierClient
	txManager      TransactionManager
	policy         domain.CancellationPolicy
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	earnings EarningsRepository,
	facilityClient FacilityServiceClient,
	gateway PaymentGateway,
	notifierClient NotifierClient,
	txManager TransactionManager,
	policy domain.CancellationPolicy,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		slotRepo:       slotRepo,
		earnings:       earnings,
		facilityClient: facilityClient,
		gateway:        gateway,
		notifier:       notifierClient,
		txManager:      txManager,
		policy:         policy,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// Execute отменяет бронирование от имени владельца площадки.
//
// Владение проверяется через сервис площадок по facility из
// бронирования. Квота считается по денормализованной колонке owner_id —
// одним запросом по всем площадкам владельца. Возврат игроку и
// уведомление выполняются после фиксации, их сбой не откатывает отмену.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var booking *domain.Booking
	var remaining int
	penalty := uc.policy.OwnerPenalty()

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingstore.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if err := uc.checkOwnership(txCtx, booking.FacilityID, req.OwnerID); err != nil {
			return err
		}

		if !booking.CanBeCancelled() {
			return ErrWrongState
		}

		now := uc.timeProvider.Now()
		count, err := uc.bookingRepo.CountMonthlyCancellations(
			txCtx, domain.RoleOwner, req.OwnerID, domain.MonthStart(now))
		if err != nil {
			return fmt.Errorf("%w: failed to count cancellations: %v", ErrInternal, err)
		}
		if count >= uc.policy.OwnerMonthlyCancelLimit {
			return ErrMonthlyCancelLimitReached
		}
		remaining = uc.policy.OwnerMonthlyCancelLimit - count - 1

		reason := strings.TrimSpace(req.Reason)
		params := bookingstore.CancelParams{
			Status:             domain.StatusCancelledByOwner,
			RefundAmount:       booking.TotalAmount,
			RefundPercent:      100,
			PenaltyApplied:     penalty,
			CancellationReason: &reason,
			CancelledAt:        now,
		}
		if err := uc.bookingRepo.Cancel(txCtx, req.BookingID, params); err != nil {
			if errors.Is(err, bookingstore.ErrAlreadyTerminal) {
				return ErrWrongState
			}
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		if err := uc.slotRepo.ReleaseIfClaimed(txCtx, booking.SlotID); err != nil {
			return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("OwnerCancelBooking: booking=%d cancelled by owner=%d, refund=%.2f penalty=%.2f",
		req.BookingID, req.OwnerID, booking.TotalAmount, penalty)

	// Учет штрафа, возврат игроку и уведомление — best-effort после фиксации
	if err := uc.earnings.AddOwnerPenalty(ctx, req.OwnerID, penalty); err != nil {
		uc.logger.Error("OwnerCancelBooking: penalty bookkeeping failed for owner=%d booking=%d: %v",
			req.OwnerID, req.BookingID, err)
	}
	uc.refundPlayer(ctx, booking)
	uc.notifyPlayer(ctx, booking, req.Reason)

	return &Response{
		BookingID:              req.BookingID,
		RefundToPlayer:         booking.TotalAmount,
		Penalty:                penalty,
		CancellationsRemaining: remaining,
	}, nil
}

// checkOwnership проверяет через сервис площадок, что площадка
// бронирования принадлежит вызывающему владельцу
func (uc *UseCase) checkOwnership(ctx context.Context, facilityID, ownerID int64) error {
	facility, err := uc.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityservice.ErrFacilityNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}
	if facility.OwnerID != ownerID {
		return ErrUnauthorized
	}
	return nil
}

func (uc *UseCase) refundPlayer(ctx context.Context, booking *domain.Booking) {
	if booking.GatewayPaymentID == nil {
		return
	}
	if err := uc.gateway.Refund(ctx, *booking.GatewayPaymentID, paymentgw.MinorUnits(booking.TotalAmount)); err != nil {
		uc.logger.Error("OwnerCancelBooking: gateway refund failed for booking=%d payment=%s: %v",
			booking.ID, *booking.GatewayPaymentID, err)
	}
}

func (uc *UseCase) notifyPlayer(ctx context.Context, booking *domain.Booking, reason string) {
	payload := map[string]string{
		"bookingId": strconv.FormatInt(booking.ID, 10),
		"slotId":    strconv.FormatInt(booking.SlotID, 10),
		"refund":    fmt.Sprintf("%.2f", booking.TotalAmount),
		"reason":    strings.TrimSpace(reason),
	}

	if err := uc.notifier.Notify(ctx, strconv.FormatInt(booking.UserID, 10), notifier.KindCancelledByOwner, payload); err != nil {
		uc.logger.Warn("OwnerCancelBooking: player notification failed for booking=%d: %v", booking.ID, err)
	}
}
