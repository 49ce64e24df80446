package verify_payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
)

// UseCase use case подтверждения оплаты: проверка подписи callback'а
// и атомарный перевод pending-бронирований в confirmed вместе с их слотами.
type UseCase struct {
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	earnings    EarningsRepository
	verifier    SignatureVerifier
	notifier    NotifierClient
	txManager   TransactionManager
	policy      domain.CancellationPolicy
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	earnings EarningsRepository,
	verifier SignatureVerifier,
	notifierClient NotifierClient,
	txManager TransactionManager,
	policy domain.CancellationPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		earnings:    earnings,
		verifier:    verifier,
		notifier:    notifierClient,
		txManager:   txManager,
		policy:      policy,
		logger:      logger,
	}
}

// Execute выполняет подтверждение оплаты.
//
// Порядок шагов фиксирован: подпись проверяется первой, до любого
// обращения к состоянию. Ни booking id, ни суммы из callback'а не
// считаются доказательством оплаты — только HMAC. Обработчик
// идемпотентен: шлюз доставляет callback как минимум один раз,
// повторная доставка не дает второго перехода и второго начисления.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" {
		return nil, fmt.Errorf("%w: order and payment ids are required", ErrInvalidInput)
	}

	// 1. Подпись. При несовпадении — ноль мутаций, лог с идентификаторами
	// для разбора фрода.
	if !uc.verifier.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature) {
		uc.logger.Warn("VerifyPayment: invalid signature for order=%s payment=%s",
			req.GatewayOrderID, req.GatewayPaymentID)
		return nil, ErrInvalidSignature
	}

	var resp *Response
	var confirmed []*domain.Booking

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Бронирования ордера; fallback на одиночный bookingId для
		// legacy-потока без привязки ордера
		bookings, err := uc.resolveBookings(txCtx, req)
		if err != nil {
			return err
		}

		// 3. Идемпотентность: повторный callback по уже подтвержденным
		// бронированиям — успех без побочных эффектов
		if allConfirmed(bookings) {
			uc.logger.Info("VerifyPayment: order=%s already confirmed, idempotent reply", req.GatewayOrderID)
			resp = &Response{
				ConfirmedBookingIDs: bookingIDs(bookings),
				AlreadyConfirmed:    true,
			}
			return nil
		}

		pending := filterByStatus(bookings, domain.StatusPending)
		if len(pending) == 0 {
			// Не pending и не все confirmed — значит отменены
			return ErrWrongState
		}

		ids := bookingIDs(pending)
		slotIDs := make([]int64, 0, len(pending))
		for _, b := range pending {
			slotIDs = append(slotIDs, b.SlotID)
		}
		userID := pending[0].UserID

		// 4. Атомарный переход: bookings pending->confirmed и slots
		// held->booked в одной транзакции. Подтвержденное бронирование
		// на незабронированном слоте — нарушение консистентности.
		affected, err := uc.bookingRepo.ConfirmPending(txCtx, ids, req.GatewayPaymentID)
		if err != nil {
			return fmt.Errorf("%w: failed to confirm bookings: %v", ErrInternal, err)
		}
		if affected != int64(len(ids)) {
			uc.logger.Error("VerifyPayment: consistency violation, confirmed %d of %d bookings for order=%s",
				affected, len(ids), req.GatewayOrderID)
			return fmt.Errorf("%w: partial booking confirmation", ErrInternal)
		}

		booked, err := uc.slotRepo.MarkBooked(txCtx, slotIDs, userID)
		if err != nil {
			return fmt.Errorf("%w: failed to mark slots booked: %v", ErrInternal, err)
		}
		if booked != int64(len(slotIDs)) {
			// Hold истек и слот ушел — поздний callback проигрывает гонку,
			// подтверждение откатывается целиком. Штатный исход, не баг
			uc.logger.Warn("VerifyPayment: hold lost, booked %d of %d slots for order=%s",
				booked, len(slotIDs), req.GatewayOrderID)
			return ErrSlotUnavailable
		}

		confirmed = pending
		resp = &Response{ConfirmedBookingIDs: ids}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 5-6. Начисления и уведомления строго после фиксации: их ошибки
	// логируются и не откатывают подтверждение
	if len(confirmed) > 0 {
		uc.applyEarnings(ctx, confirmed)
		uc.notifyConfirmed(ctx, confirmed)
		uc.logger.Info("VerifyPayment: order=%s confirmed %d bookings", req.GatewayOrderID, len(confirmed))
	}

	return resp, nil
}

// resolveBookings находит бронирования callback'а: сначала по ордеру,
// затем по одиночному bookingId (legacy-поток)
func (uc *UseCase) resolveBookings(ctx context.Context, req *Request) ([]*domain.Booking, error) {
	bookings, err := uc.bookingRepo.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve bookings by order: %v", ErrInternal, err)
	}
	if len(bookings) > 0 {
		return bookings, nil
	}

	if req.BookingID > 0 {
		b, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, fmt.Errorf("%w: failed to resolve booking by id: %v", ErrInternal, err)
		}
		return []*domain.Booking{b}, nil
	}

	return nil, ErrBookingNotFound
}

// applyEarnings делит оплату на комиссию платформы и заработок владельца.
// Фиксированная комиссия с каждого бронирования, остаток — владельцу.
func (uc *UseCase) applyEarnings(ctx context.Context, bookings []*domain.Booking) {
	fee := uc.policy.PlatformBookingFee

	for _, b := range bookings {
		ownerShare := b.TotalAmount - fee
		if ownerShare < 0 {
			ownerShare = 0
		}

		if err := uc.earnings.AddOwnerEarning(ctx, b.OwnerID, ownerShare); err != nil {
			uc.logger.Error("VerifyPayment: earnings update failed for owner=%d booking=%d: %v",
				b.OwnerID, b.ID, err)
		}
		if err := uc.earnings.AddPlatformFee(ctx, fee); err != nil {
			uc.logger.Error("VerifyPayment: platform fee update failed for booking=%d: %v", b.ID, err)
		}
	}
}

// notifyConfirmed шлет уведомления о подтверждении обеим сторонам
func (uc *UseCase) notifyConfirmed(ctx context.Context, bookings []*domain.Booking) {
	for _, b := range bookings {
		payload := map[string]string{
			"bookingId": strconv.FormatInt(b.ID, 10),
			"slotId":    strconv.FormatInt(b.SlotID, 10),
			"amount":    fmt.Sprintf("%.2f", b.TotalAmount),
		}

		if err := uc.notifier.Notify(ctx, strconv.FormatInt(b.UserID, 10), notifier.KindBookingConfirmed, payload); err != nil {
			uc.logger.Warn("VerifyPayment: player notification failed for booking=%d: %v", b.ID, err)
		}
		if err := uc.notifier.Notify(ctx, strconv.FormatInt(b.OwnerID, 10), notifier.KindBookingConfirmed, payload); err != nil {
			uc.logger.Warn("VerifyPayment: owner notification failed for booking=%d: %v", b.ID, err)
		}
	}
}

func allConfirmed(bookings []*domain.Booking) bool {
	for _, b := range bookings {
		if b.Status != domain.StatusConfirmed {
			return false
		}
	}
	return len(bookings) > 0
}

func filterByStatus(bookings []*domain.Booking, status domain.BookingStatus) []*domain.Booking {
	filtered := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == status {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func bookingIDs(bookings []*domain.Booking) []int64 {
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}
