package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingstore "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
	"github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
)

// Причины запрета отмены для read-only превью
const (
	reasonWrongState   = "Бронирование уже отменено"
	reasonTooLate      = "Слот уже начался, отмена невозможна"
	reasonQuotaReached = "Исчерпан лимит отмен в этом месяце"
)

// UseCase use case отмены бронирования игроком и превью отмены.
// Оба пути используют одну и ту же функцию вычисления политики, чтобы
// превью никогда не расходилось с фактической отменой.
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	gateway      PaymentGateway
	notifier     NotifierClient
	txManager    TransactionManager
	policy       domain.CancellationPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	gateway PaymentGateway,
	notifierClient NotifierClient,
	txManager TransactionManager,
	policy domain.CancellationPolicy,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		gateway:      gateway,
		notifier:     notifierClient,
		txManager:    txManager,
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// decision результат вычисления политики отмены для конкретного
// бронирования в конкретный момент времени
type decision struct {
	booking       *domain.Booking
	slot          *domain.Slot
	refundPercent int
	refundAmount  float64
	remaining     int
	blockErr      error // nil, если отмена разрешена
}

// Execute отменяет бронирование от имени игрока.
//
// Политика пересчитывается внутри серализуемой транзакции по строке
// бронирования под FOR UPDATE: превью, полученное раньше, не дает
// никаких гарантий к моменту отмены. Возврат средств и уведомление
// владельца выполняются после фиксации и не откатывают отмену.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: booking and user ids must be positive", ErrInvalidInput)
	}

	var d *decision

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		d, err = uc.evaluate(txCtx, req.BookingID, req.UserID)
		if err != nil {
			return err
		}
		if d.blockErr != nil {
			return d.blockErr
		}

		now := uc.timeProvider.Now()
		params := bookingstore.CancelParams{
			Status:        domain.StatusCancelledByPlayer,
			RefundAmount:  d.refundAmount,
			RefundPercent: d.refundPercent,
			CancelledAt:   now,
		}
		if err := uc.bookingRepo.Cancel(txCtx, req.BookingID, params); err != nil {
			if errors.Is(err, bookingstore.ErrAlreadyTerminal) {
				return ErrWrongState
			}
			return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
		}

		// Слот мог уже вернуться в available (sweeper снял истекшее
		// удержание) — освобождение идемпотентно и это не блокирует отмену
		if err := uc.slotRepo.ReleaseIfClaimed(txCtx, d.booking.SlotID); err != nil {
			return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking=%d cancelled by user=%d, refund=%d%% (%.2f)",
		req.BookingID, req.UserID, d.refundPercent, d.refundAmount)

	// Возврат через шлюз и уведомление владельца — best-effort
	uc.refundPlayer(ctx, d.booking, d.refundAmount)
	uc.notifyOwner(ctx, d.booking, d.refundAmount)

	return &Response{
		BookingID:              req.BookingID,
		RefundAmount:           d.refundAmount,
		RefundPercent:          d.refundPercent,
		CancellationsRemaining: d.remaining - 1,
	}, nil
}

// GetCancellationInfo возвращает превью отмены без изменения состояния
func (uc *UseCase) GetCancellationInfo(ctx context.Context, bookingID, userID int64) (*InfoResponse, error) {
	if bookingID <= 0 || userID <= 0 {
		return nil, fmt.Errorf("%w: booking and user ids must be positive", ErrInvalidInput)
	}

	d, err := uc.evaluate(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	resp := &InfoResponse{
		BookingID:              bookingID,
		CanCancel:              d.blockErr == nil,
		RefundAmount:           d.refundAmount,
		RefundPercent:          d.refundPercent,
		CancellationsRemaining: d.remaining,
	}

	switch {
	case errors.Is(d.blockErr, ErrWrongState):
		resp.Reason = reasonWrongState
	case errors.Is(d.blockErr, ErrTooLateToCancel):
		resp.Reason = reasonTooLate
	case errors.Is(d.blockErr, ErrMonthlyCancelLimitReached):
		resp.Reason = reasonQuotaReached
	}

	return resp, nil
}

// evaluate вычисляет политику отмены. Ошибки доступа и внутренние
// ошибки возвращаются как error, нарушения политики — в blockErr,
// чтобы превью могло показать причину вместо отказа запроса.
func (uc *UseCase) evaluate(ctx context.Context, bookingID, userID int64) (*decision, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingstore.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if booking.UserID != userID {
		return nil, ErrAccessDenied
	}

	slot, err := uc.slotRepo.GetByID(ctx, booking.SlotID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	monthStart := domain.MonthStart(now)

	count, err := uc.bookingRepo.CountMonthlyCancellations(ctx, domain.RolePlayer, userID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count cancellations: %v", ErrInternal, err)
	}

	remaining := uc.policy.PlayerMonthlyCancelLimit - count
	if remaining < 0 {
		remaining = 0
	}

	d := &decision{
		booking:   booking,
		slot:      slot,
		remaining: remaining,
	}

	start := slot.StartDateTime()

	switch {
	case !booking.CanBeCancelled():
		d.blockErr = ErrWrongState
	case !start.IsZero() && !now.Before(start):
		d.blockErr = ErrTooLateToCancel
	case remaining == 0:
		d.blockErr = ErrMonthlyCancelLimitReached
	}

	if d.blockErr == nil {
		d.refundPercent = uc.policy.RefundPercentFor(start, now)
		d.refundAmount = booking.TotalAmount * float64(d.refundPercent) / 100
	}

	return d, nil
}

// refundPlayer инициирует возврат через шлюз, если есть что возвращать
// и платеж был проведен
func (uc *UseCase) refundPlayer(ctx context.Context, booking *domain.Booking, refundAmount float64) {
	if refundAmount <= 0 || booking.GatewayPaymentID == nil {
		return
	}

	if err := uc.gateway.Refund(ctx, *booking.GatewayPaymentID, paymentgw.MinorUnits(refundAmount)); err != nil {
		uc.logger.Error("CancelBooking: gateway refund failed for booking=%d payment=%s: %v",
			booking.ID, *booking.GatewayPaymentID, err)
	}
}

func (uc *UseCase) notifyOwner(ctx context.Context, booking *domain.Booking, refundAmount float64) {
	payload := map[string]string{
		"bookingId": strconv.FormatInt(booking.ID, 10),
		"slotId":    strconv.FormatInt(booking.SlotID, 10),
		"refund":    fmt.Sprintf("%.2f", refundAmount),
	}

	if err := uc.notifier.Notify(ctx, strconv.FormatInt(booking.OwnerID, 10), notifier.KindCancelledByPlayer, payload); err != nil {
		uc.logger.Warn("CancelBooking: owner notification failed for booking=%d: %v", booking.ID, err)
	}
}
