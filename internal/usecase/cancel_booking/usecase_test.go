package cancel_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	bookingstore "github.com/m04kA/Turf-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
	"github.com/m04kA/Turf-BookingService/pkg/types"
)

var testNow = time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	booking     *domain.Booking
	cancelCount int

	cancelled       []int64
	cancelledParams []bookingstore.CancelParams
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, bookingstore.ErrBookingNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, params bookingstore.CancelParams) error {
	if f.booking != nil && f.booking.IsTerminal() {
		return bookingstore.ErrAlreadyTerminal
	}
	f.cancelled = append(f.cancelled, id)
	f.cancelledParams = append(f.cancelledParams, params)
	return nil
}

func (f *fakeBookingRepo) CountMonthlyCancellations(_ context.Context, _ domain.CancellationRole, _ int64, _ time.Time) (int, error) {
	return f.cancelCount, nil
}

type fakeSlotRepo struct {
	slot     *domain.Slot
	released []int64
}

func (f *fakeSlotRepo) GetByID(_ context.Context, _ int64) (*domain.Slot, error) {
	return f.slot, nil
}

// ReleaseIfClaimed повторяет контракт репозитория: условный UPDATE
// затрагивает только held/booked слоты, для available это no-op без ошибки
func (f *fakeSlotRepo) ReleaseIfClaimed(_ context.Context, id int64) error {
	if f.slot != nil && f.slot.Status != domain.SlotAvailable {
		f.released = append(f.released, id)
	}
	return nil
}

type fakeGateway struct {
	refunds []int64 // суммы в минорных единицах
}

func (f *fakeGateway) Refund(_ context.Context, _ string, amountMinor int64) error {
	f.refunds = append(f.refunds, amountMinor)
	return nil
}

type fakeNotifier struct {
	recipients []string
}

func (f *fakeNotifier) Notify(_ context.Context, recipient string, _ notifier.TemplateKind, _ map[string]string) error {
	f.recipients = append(f.recipients, recipient)
	return nil
}

// confirmedBooking подтвержденное бронирование слота 10 со стартом start
func confirmedBooking(start time.Time) (*domain.Booking, *domain.Slot) {
	paymentID := "pay_1"
	booking := &domain.Booking{
		ID:               1,
		UserID:           42,
		SlotID:           10,
		FacilityID:       1,
		OwnerID:          100,
		Status:           domain.StatusConfirmed,
		TotalAmount:      500,
		GatewayPaymentID: &paymentID,
	}
	slot := &domain.Slot{
		ID:         10,
		FacilityID: 1,
		OwnerID:    100,
		Date:       time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:  types.NewTimeString(start),
		Status:     domain.SlotBooked,
	}
	return booking, slot
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, gateway *fakeGateway, notif *fakeNotifier, now time.Time) *UseCase {
	return NewUseCase(bookings, slots, gateway, notif, fakeTxManager{},
		domain.DefaultCancellationPolicy(), &fakeTime{now: now}, nopLogger{})
}

func TestExecute_FullRefundAtThreshold(t *testing.T) {
	// Ровно за два часа до начала — еще 100%
	booking, slot := confirmedBooking(testNow.Add(2 * time.Hour))
	bookings := &fakeBookingRepo{booking: booking}
	slots := &fakeSlotRepo{slot: slot}
	gateway := &fakeGateway{}
	notif := &fakeNotifier{}

	uc := newTestUseCase(bookings, slots, gateway, notif, testNow)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, 100, resp.RefundPercent)
	require.Equal(t, 500.0, resp.RefundAmount)
	require.Equal(t, 4, resp.CancellationsRemaining)

	require.Equal(t, []int64{1}, bookings.cancelled)
	require.Equal(t, domain.StatusCancelledByPlayer, bookings.cancelledParams[0].Status)
	require.Equal(t, []int64{10}, slots.released)
	require.Equal(t, []int64{50000}, gateway.refunds)
	require.Equal(t, []string{"100"}, notif.recipients)
}

func TestExecute_ZeroRefundInsideThreshold(t *testing.T) {
	// На секунду позже порога — уже 0%
	booking, slot := confirmedBooking(testNow.Add(2*time.Hour - time.Second))
	bookings := &fakeBookingRepo{booking: booking}
	gateway := &fakeGateway{}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, gateway, &fakeNotifier{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, 0, resp.RefundPercent)
	require.Equal(t, 0.0, resp.RefundAmount)

	// Отмена проходит, но возврат через шлюз не инициируется
	require.Equal(t, []int64{1}, bookings.cancelled)
	require.Empty(t, gateway.refunds)
}

func TestExecute_PendingWithSweptHold(t *testing.T) {
	// Удержание истекло и sweeper уже вернул слот в available, но
	// бронирование еще pending: отмена должна пройти, а не падать на
	// освобождении слота
	booking, slot := confirmedBooking(testNow.Add(3 * time.Hour))
	booking.Status = domain.StatusPending
	booking.GatewayPaymentID = nil
	slot.Status = domain.SlotAvailable

	bookings := &fakeBookingRepo{booking: booking}
	slots := &fakeSlotRepo{slot: slot}
	gateway := &fakeGateway{}

	uc := newTestUseCase(bookings, slots, gateway, &fakeNotifier{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.BookingID)

	require.Equal(t, []int64{1}, bookings.cancelled)
	require.Equal(t, domain.StatusCancelledByPlayer, bookings.cancelledParams[0].Status)

	// Слот уже был available: освобождать нечего, возврат без платежа не инициируется
	require.Empty(t, slots.released)
	require.Empty(t, gateway.refunds)
}

func TestExecute_TooLateAfterSlotStart(t *testing.T) {
	booking, slot := confirmedBooking(testNow.Add(-time.Minute))
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, &fakeGateway{}, &fakeNotifier{}, testNow)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.ErrorIs(t, err, ErrTooLateToCancel)
	require.Empty(t, bookings.cancelled)
}

func TestExecute_MonthlyQuota(t *testing.T) {
	limit := domain.DefaultCancellationPolicy().PlayerMonthlyCancelLimit

	// Предпоследняя отмена в месяце проходит, остаток становится нулем
	booking, slot := confirmedBooking(testNow.Add(3 * time.Hour))
	bookings := &fakeBookingRepo{booking: booking, cancelCount: limit - 1}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, &fakeGateway{}, &fakeNotifier{}, testNow)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, 0, resp.CancellationsRemaining)

	// Лимит исчерпан — отмена блокируется
	booking2, slot2 := confirmedBooking(testNow.Add(3 * time.Hour))
	bookings2 := &fakeBookingRepo{booking: booking2, cancelCount: limit}

	uc2 := newTestUseCase(bookings2, &fakeSlotRepo{slot: slot2}, &fakeGateway{}, &fakeNotifier{}, testNow)

	_, err = uc2.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.ErrorIs(t, err, ErrMonthlyCancelLimitReached)
	require.Empty(t, bookings2.cancelled)
}

func TestExecute_AccessDenied(t *testing.T) {
	booking, slot := confirmedBooking(testNow.Add(3 * time.Hour))
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, &fakeGateway{}, &fakeNotifier{}, testNow)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 43})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_NotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{}, &fakeGateway{}, &fakeNotifier{}, testNow)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 7, UserID: 42})
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_AlreadyCancelled(t *testing.T) {
	booking, slot := confirmedBooking(testNow.Add(3 * time.Hour))
	booking.Status = domain.StatusCancelledByPlayer
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, &fakeGateway{}, &fakeNotifier{}, testNow)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.ErrorIs(t, err, ErrWrongState)
}

func TestGetCancellationInfo_MatchesExecute(t *testing.T) {
	booking, slot := confirmedBooking(testNow.Add(2 * time.Hour))
	bookings := &fakeBookingRepo{booking: booking}
	slots := &fakeSlotRepo{slot: slot}

	uc := newTestUseCase(bookings, slots, &fakeGateway{}, &fakeNotifier{}, testNow)

	info, err := uc.GetCancellationInfo(context.Background(), 1, 42)
	require.NoError(t, err)
	require.True(t, info.CanCancel)
	require.Empty(t, info.Reason)
	require.Equal(t, 100, info.RefundPercent)
	require.Equal(t, 500.0, info.RefundAmount)
	require.Equal(t, 5, info.CancellationsRemaining)

	// Превью ничего не меняет
	require.Empty(t, bookings.cancelled)
	require.Empty(t, slots.released)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, info.RefundPercent, resp.RefundPercent)
	require.Equal(t, info.RefundAmount, resp.RefundAmount)
}

func TestGetCancellationInfo_BlockedWithReason(t *testing.T) {
	booking, slot := confirmedBooking(testNow.Add(-time.Minute))
	bookings := &fakeBookingRepo{booking: booking}

	uc := newTestUseCase(bookings, &fakeSlotRepo{slot: slot}, &fakeGateway{}, &fakeNotifier{}, testNow)

	info, err := uc.GetCancellationInfo(context.Background(), 1, 42)
	require.NoError(t, err)
	require.False(t, info.CanCancel)
	require.Equal(t, reasonTooLate, info.Reason)
	require.Zero(t, info.RefundPercent)
}
