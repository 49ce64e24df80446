package verify_payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/notifier"
	"github.com/m04kA/Turf-BookingService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVerifier struct{ valid bool }

func (f fakeVerifier) VerifySignature(_, _, _ string) bool { return f.valid }

type fakeBookingRepo struct {
	byOrder map[string][]*domain.Booking

	confirmedIDs    []int64
	paymentID       string
	confirmAffected *int64 // если задано, ConfirmPending возвращает это значение
}

func (f *fakeBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	return nil, errors.New("unexpected GetByID call")
}

func (f *fakeBookingRepo) GetByGatewayOrderID(_ context.Context, orderID string) ([]*domain.Booking, error) {
	return f.byOrder[orderID], nil
}

func (f *fakeBookingRepo) ConfirmPending(_ context.Context, ids []int64, paymentID string) (int64, error) {
	f.confirmedIDs = append(f.confirmedIDs, ids...)
	f.paymentID = paymentID
	if f.confirmAffected != nil {
		return *f.confirmAffected, nil
	}
	return int64(len(ids)), nil
}

type fakeSlotRepo struct {
	bookedIDs    []int64
	bookedUser   int64
	markAffected *int64
}

func (f *fakeSlotRepo) MarkBooked(_ context.Context, ids []int64, userID int64) (int64, error) {
	f.bookedIDs = append(f.bookedIDs, ids...)
	f.bookedUser = userID
	if f.markAffected != nil {
		return *f.markAffected, nil
	}
	return int64(len(ids)), nil
}

type fakeEarnings struct {
	ownerAmounts map[int64]float64
	platformFees float64
	failWith     error
}

func (f *fakeEarnings) AddOwnerEarning(_ context.Context, ownerID int64, amount float64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if f.ownerAmounts == nil {
		f.ownerAmounts = make(map[int64]float64)
	}
	f.ownerAmounts[ownerID] += amount
	return nil
}

func (f *fakeEarnings) AddPlatformFee(_ context.Context, amount float64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.platformFees += amount
	return nil
}

type fakeNotifier struct {
	recipients []string
}

func (f *fakeNotifier) Notify(_ context.Context, recipient string, _ notifier.TemplateKind, _ map[string]string) error {
	f.recipients = append(f.recipients, recipient)
	return nil
}

func pendingBooking(id, userID, slotID, ownerID int64, amount float64) *domain.Booking {
	orderID := "order_1"
	return &domain.Booking{
		ID:             id,
		UserID:         userID,
		SlotID:         slotID,
		FacilityID:     1,
		OwnerID:        ownerID,
		Status:         domain.StatusPending,
		TotalAmount:    amount,
		GatewayOrderID: &orderID,
	}
}

func newTestUseCase(bookings *fakeBookingRepo, slots *fakeSlotRepo, earnings *fakeEarnings, verifier fakeVerifier, notif *fakeNotifier) *UseCase {
	return NewUseCase(bookings, slots, earnings, verifier, notif, fakeTxManager{}, domain.DefaultCancellationPolicy(), nopLogger{})
}

func validRequest() *Request {
	return &Request{
		GatewayOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig",
	}
}

func TestExecute_ConfirmsPendingAndSplitsEarnings(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {
			pendingBooking(1, 42, 10, 100, 500),
			pendingBooking(2, 42, 11, 100, 700),
		},
	}}
	slots := &fakeSlotRepo{}
	earn := &fakeEarnings{}
	notif := &fakeNotifier{}

	uc := newTestUseCase(bookings, slots, earn, fakeVerifier{valid: true}, notif)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, resp.ConfirmedBookingIDs)
	require.False(t, resp.AlreadyConfirmed)

	require.Equal(t, []int64{1, 2}, bookings.confirmedIDs)
	require.Equal(t, "pay_1", bookings.paymentID)
	require.Equal(t, []int64{10, 11}, slots.bookedIDs)
	require.Equal(t, int64(42), slots.bookedUser)

	// Комиссия платформы с каждого бронирования, остаток владельцу
	fee := domain.DefaultCancellationPolicy().PlatformBookingFee
	require.Equal(t, (500-fee)+(700-fee), earn.ownerAmounts[100])
	require.Equal(t, 2*fee, earn.platformFees)

	// Игрок и владелец уведомлены по каждому бронированию
	require.Equal(t, []string{"42", "100", "42", "100"}, notif.recipients)
}

func TestExecute_InvalidSignature(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {pendingBooking(1, 42, 10, 100, 500)},
	}}
	slots := &fakeSlotRepo{}
	earn := &fakeEarnings{}

	uc := newTestUseCase(bookings, slots, earn, fakeVerifier{valid: false}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Ноль мутаций при невалидной подписи
	require.Empty(t, bookings.confirmedIDs)
	require.Empty(t, slots.bookedIDs)
	require.Zero(t, earn.platformFees)
}

func TestExecute_IdempotentOnRepeatedCallback(t *testing.T) {
	confirmed := pendingBooking(1, 42, 10, 100, 500)
	confirmed.Status = domain.StatusConfirmed

	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{"order_1": {confirmed}}}
	earn := &fakeEarnings{}
	notif := &fakeNotifier{}

	uc := newTestUseCase(bookings, &fakeSlotRepo{}, earn, fakeVerifier{valid: true}, notif)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, resp.AlreadyConfirmed)
	require.Equal(t, []int64{1}, resp.ConfirmedBookingIDs)

	// Повторный callback не дает второго перехода и второго начисления
	require.Empty(t, bookings.confirmedIDs)
	require.Zero(t, earn.platformFees)
	require.Empty(t, notif.recipients)
}

func TestExecute_CancelledBooking(t *testing.T) {
	cancelled := pendingBooking(1, 42, 10, 100, 500)
	cancelled.Status = domain.StatusCancelledByPlayer

	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{"order_1": {cancelled}}}

	uc := newTestUseCase(bookings, &fakeSlotRepo{}, &fakeEarnings{}, fakeVerifier{valid: true}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrWrongState)
}

func TestExecute_UnknownOrder(t *testing.T) {
	uc := newTestUseCase(
		&fakeBookingRepo{byOrder: map[string][]*domain.Booking{}},
		&fakeSlotRepo{},
		&fakeEarnings{},
		fakeVerifier{valid: true},
		&fakeNotifier{},
	)

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_PartialConfirmationFails(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {
			pendingBooking(1, 42, 10, 100, 500),
			pendingBooking(2, 42, 11, 100, 700),
		},
	}}
	bookings.confirmAffected = ptr.Ptr(int64(1))

	slots := &fakeSlotRepo{}
	earn := &fakeEarnings{}

	uc := newTestUseCase(bookings, slots, earn, fakeVerifier{valid: true}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrInternal)

	// Слоты не трогаются, начислений нет
	require.Empty(t, slots.bookedIDs)
	require.Zero(t, earn.platformFees)
}

func TestExecute_LostHoldRollsBack(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {pendingBooking(1, 42, 10, 100, 500)},
	}}
	slots := &fakeSlotRepo{}
	slots.markAffected = ptr.Ptr(int64(0))

	earn := &fakeEarnings{}

	uc := newTestUseCase(bookings, slots, earn, fakeVerifier{valid: true}, &fakeNotifier{})

	// Поздний callback: удержание потеряно — штатная конкуренция,
	// а не внутренняя ошибка; начислений нет
	_, err := uc.Execute(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.Zero(t, earn.platformFees)
}

func TestExecute_EarningsFailureDoesNotFailConfirmation(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {pendingBooking(1, 42, 10, 100, 500)},
	}}
	earn := &fakeEarnings{failWith: errors.New("earnings down")}

	uc := newTestUseCase(bookings, &fakeSlotRepo{}, earn, fakeVerifier{valid: true}, &fakeNotifier{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, []int64{1}, resp.ConfirmedBookingIDs)
}

func TestExecute_MissingIdentifiers(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSlotRepo{}, &fakeEarnings{}, fakeVerifier{valid: true}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{GatewayPaymentID: "pay_1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{GatewayOrderID: "order_1"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_SmallAmountClampsOwnerShare(t *testing.T) {
	bookings := &fakeBookingRepo{byOrder: map[string][]*domain.Booking{
		"order_1": {pendingBooking(1, 42, 10, 100, 30)}, // меньше комиссии платформы
	}}
	earn := &fakeEarnings{}

	uc := newTestUseCase(bookings, &fakeSlotRepo{}, earn, fakeVerifier{valid: true}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, 0.0, earn.ownerAmounts[100])
}
