package reserve_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/integrations/facilityservice"
	"github.com/m04kA/Turf-BookingService/internal/integrations/paymentgw"
	"github.com/m04kA/Turf-BookingService/pkg/ptr"
)

var testNow = time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fakeTxManager исполняет функцию без настоящей транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSlotRepo struct {
	slots map[int64]*domain.Slot

	claimed       []int64
	claimOverride *int64 // если задано, ClaimForUser возвращает это значение
	released      []int64
}

func (f *fakeSlotRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Slot, error) {
	out := make([]*domain.Slot, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.slots[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) ClaimForUser(_ context.Context, ids []int64, _ int64, _, _ time.Time) (int64, error) {
	if f.claimOverride != nil {
		return *f.claimOverride, nil
	}
	f.claimed = append(f.claimed, ids...)
	return int64(len(ids)), nil
}

func (f *fakeSlotRepo) ReleaseMany(_ context.Context, ids []int64) error {
	f.released = append(f.released, ids...)
	return nil
}

type fakeBookingRepo struct {
	nextID  int64
	created []*domain.Booking
	deleted []int64

	orderID     string
	setOrderErr error
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	f.nextID++
	created := *b
	created.ID = f.nextID
	f.created = append(f.created, &created)
	return &created, nil
}

func (f *fakeBookingRepo) SetGatewayOrder(_ context.Context, _ []int64, orderID string) error {
	if f.setOrderErr != nil {
		return f.setOrderErr
	}
	f.orderID = orderID
	return nil
}

func (f *fakeBookingRepo) Delete(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

type fakeFacilities struct {
	facilities map[int64]*facilityservice.Facility
}

func (f *fakeFacilities) GetFacility(_ context.Context, id int64) (*facilityservice.Facility, error) {
	facility, ok := f.facilities[id]
	if !ok {
		return nil, facilityservice.ErrFacilityNotFound
	}
	return facility, nil
}

type fakeGateway struct {
	orders    int
	failWith  error
	lastMinor int64
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountMinor int64) (*paymentgw.Order, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.orders++
	f.lastMinor = amountMinor
	return &paymentgw.Order{ID: "order_test", Amount: amountMinor, Status: "created"}, nil
}

func availableSlot(id, facilityID, ownerID int64, price float64) *domain.Slot {
	return &domain.Slot{
		ID:         id,
		FacilityID: facilityID,
		OwnerID:    ownerID,
		Date:       testNow.AddDate(0, 0, 1),
		Price:      price,
		Status:     domain.SlotAvailable,
	}
}

func approvedFacility(id, ownerID int64) *facilityservice.Facility {
	return &facilityservice.Facility{ID: id, OwnerID: ownerID, Status: facilityservice.StatusApproved}
}

func newTestUseCase(slots *fakeSlotRepo, bookings *fakeBookingRepo, facilities *fakeFacilities, gateway *fakeGateway) *UseCase {
	uc := NewUseCase(slots, bookings, facilities, gateway, fakeTxManager{}, domain.DefaultCancellationPolicy(), nopLogger{})
	uc.timeProvider = &fakeTime{now: testNow}
	return uc
}

func TestExecute_Success(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		10: availableSlot(10, 1, 100, 500),
		11: availableSlot(11, 1, 100, 700),
	}}
	bookings := &fakeBookingRepo{}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: approvedFacility(1, 100)}}
	gateway := &fakeGateway{}

	uc := newTestUseCase(slots, bookings, facilities, gateway)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10, 11}})
	require.NoError(t, err)

	require.Len(t, resp.BookingIDs, 2)
	require.Equal(t, "order_test", resp.OrderID)
	require.Equal(t, 1200.0, resp.TotalAmount)
	require.Equal(t, int64(120000), resp.AmountMinor)
	require.Equal(t, testNow.Add(domain.DefaultHoldTTL), resp.HeldUntil)

	// Цена фиксируется на бронировании в момент создания
	require.Equal(t, 500.0, bookings.created[0].TotalAmount)
	require.Equal(t, 700.0, bookings.created[1].TotalAmount)
	require.Equal(t, domain.StatusPending, bookings.created[0].Status)
	require.Equal(t, "order_test", bookings.orderID)
}

func TestExecute_SlotHeldByAnother(t *testing.T) {
	other := int64(99)
	holdUntil := testNow.Add(10 * time.Minute)

	held := availableSlot(11, 1, 100, 700)
	held.Status = domain.SlotHeld
	held.HeldBy = &other
	held.HeldUntil = &holdUntil

	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		10: availableSlot(10, 1, 100, 500),
		11: held,
	}}
	bookings := &fakeBookingRepo{}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: approvedFacility(1, 100)}}

	uc := newTestUseCase(slots, bookings, facilities, &fakeGateway{})

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10, 11}})
	require.ErrorIs(t, err, ErrSlotUnavailable)

	// Ответ называет, каких именно слотов не хватило
	var unavailable *SlotsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, []int64{11}, unavailable.SlotIDs)

	// Всё или ничего: бронирования не создаются
	require.Empty(t, bookings.created)
}

func TestExecute_ExpiredHoldIsClaimable(t *testing.T) {
	other := int64(99)
	expired := testNow.Add(-time.Minute)

	held := availableSlot(10, 1, 100, 500)
	held.Status = domain.SlotHeld
	held.HeldBy = &other
	held.HeldUntil = &expired

	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{10: held}}
	bookings := &fakeBookingRepo{}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: approvedFacility(1, 100)}}

	uc := newTestUseCase(slots, bookings, facilities, &fakeGateway{})

	resp, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10}})
	require.NoError(t, err)
	require.Len(t, resp.BookingIDs, 1)
}

func TestExecute_ClaimRace(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		10: availableSlot(10, 1, 100, 500),
		11: availableSlot(11, 1, 100, 700),
	}}
	// Конкурент успел между чтением и UPDATE: захвачена одна строка из двух
	slots.claimOverride = ptr.Ptr(int64(1))

	bookings := &fakeBookingRepo{}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: approvedFacility(1, 100)}}

	uc := newTestUseCase(slots, bookings, facilities, &fakeGateway{})

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10, 11}})
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.Empty(t, bookings.created)
}

func TestExecute_OwnershipMismatch(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		10: availableSlot(10, 1, 100, 500),
		11: availableSlot(11, 2, 200, 700), // другой владелец
	}}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{
		1: approvedFacility(1, 100),
		2: approvedFacility(2, 200),
	}}

	uc := newTestUseCase(slots, &fakeBookingRepo{}, facilities, &fakeGateway{})

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10, 11}})
	require.ErrorIs(t, err, ErrOwnershipMismatch)
}

func TestExecute_FacilityNotApproved(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{10: availableSlot(10, 1, 100, 500)}}
	pending := &facilityservice.Facility{ID: 1, OwnerID: 100, Status: facilityservice.StatusPending}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: pending}}

	uc := newTestUseCase(slots, &fakeBookingRepo{}, facilities, &fakeGateway{})

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10}})
	require.ErrorIs(t, err, ErrFacilityNotApproved)
}

func TestExecute_GatewayFailureCompensates(t *testing.T) {
	slots := &fakeSlotRepo{slots: map[int64]*domain.Slot{
		10: availableSlot(10, 1, 100, 500),
	}}
	bookings := &fakeBookingRepo{}
	facilities := &fakeFacilities{facilities: map[int64]*facilityservice.Facility{1: approvedFacility(1, 100)}}
	gateway := &fakeGateway{failWith: errors.New("gateway down")}

	uc := newTestUseCase(slots, bookings, facilities, gateway)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{10}})
	require.ErrorIs(t, err, ErrPaymentGatewayUnavailable)

	// Компенсация: слот освобожден, pending-строка удалена
	require.Equal(t, []int64{10}, slots.released)
	require.Equal(t, []int64{1}, bookings.deleted)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(
		&fakeSlotRepo{slots: map[int64]*domain.Slot{}},
		&fakeBookingRepo{},
		&fakeFacilities{},
		&fakeGateway{},
	)

	_, err := uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: nil})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{UserID: 42, SlotIDs: []int64{5, 5}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{UserID: 0, SlotIDs: []int64{5}})
	require.ErrorIs(t, err, ErrInvalidInput)
}
