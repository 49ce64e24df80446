package holdsweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

type fakeTime struct{ now time.Time }

func (f *fakeTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeSlotRepo struct {
	released int64
	err      error

	calls []time.Time
}

func (f *fakeSlotRepo) ReleaseExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, now)
	return f.released, f.err
}

type fakeBookingRepo struct {
	expired int64
	err     error

	calls []time.Time
}

func (f *fakeBookingRepo) ExpireOrphanedPending(_ context.Context, now time.Time) (int64, error) {
	f.calls = append(f.calls, now)
	return f.expired, f.err
}

type fakeMetrics struct {
	observed []int64
}

func (f *fakeMetrics) ObserveSweeperReleased(count int64) {
	f.observed = append(f.observed, count)
}

func TestSweep_ReleasesExpiredHolds(t *testing.T) {
	repo := &fakeSlotRepo{released: 3}
	bookings := &fakeBookingRepo{expired: 3}
	metrics := &fakeMetrics{}

	s := New(repo, bookings, metrics, &fakeTime{now: testNow}, time.Minute, nopLogger{})
	s.sweep(context.Background())

	require.Equal(t, []time.Time{testNow}, repo.calls)
	require.Equal(t, []int64{3}, metrics.observed)

	// Осиротевшие pending-бронирования закрываются в том же обходе
	require.Equal(t, []time.Time{testNow}, bookings.calls)
}

func TestSweep_QuietWhenNothingExpired(t *testing.T) {
	repo := &fakeSlotRepo{released: 0}
	bookings := &fakeBookingRepo{}
	metrics := &fakeMetrics{}

	s := New(repo, bookings, metrics, &fakeTime{now: testNow}, time.Minute, nopLogger{})
	s.sweep(context.Background())

	require.Empty(t, metrics.observed)
	// Уборка бронирований выполняется даже без свежеосвобожденных слотов:
	// слот мог быть перехвачен ленивым захватом мимо sweeper'а
	require.Len(t, bookings.calls, 1)
}

func TestSweep_RepoErrorDoesNotPanic(t *testing.T) {
	repo := &fakeSlotRepo{err: errors.New("db down")}
	bookings := &fakeBookingRepo{}
	metrics := &fakeMetrics{}

	s := New(repo, bookings, metrics, &fakeTime{now: testNow}, time.Minute, nopLogger{})
	s.sweep(context.Background())

	require.Empty(t, metrics.observed)
	require.Empty(t, bookings.calls)
}

func TestStartStop(t *testing.T) {
	repo := &fakeSlotRepo{}

	s := New(repo, &fakeBookingRepo{}, &fakeMetrics{}, &fakeTime{now: testNow}, time.Hour, nopLogger{})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestStop_WithoutStart(t *testing.T) {
	s := New(&fakeSlotRepo{}, &fakeBookingRepo{}, &fakeMetrics{}, &fakeTime{now: testNow}, time.Minute, nopLogger{})
	require.NoError(t, s.Stop())
}
