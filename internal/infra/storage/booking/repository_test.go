package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/Turf-BookingService/internal/domain"
)

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	repo := NewRepository(db)

	closer := func() {
		db.Close()
	}

	return repo, mock, closer
}

func TestConfirmPending_Idempotent(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Первый callback: обе строки pending, обе подтверждаются
	mock.ExpectExec(`UPDATE bookings SET status = .+ WHERE id IN \(.+\) AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.ConfirmPending(context.Background(), []int64{1, 2}, "pay_123")
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)

	// Повторный callback: строки уже confirmed, условие не проходит
	mock.ExpectExec(`UPDATE bookings SET status = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err = repo.ConfirmPending(context.Background(), []int64{1, 2}, "pay_123")
	require.NoError(t, err)
	require.Equal(t, int64(0), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_TerminalNotOverwritten(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	params := CancelParams{
		Status:        domain.StatusCancelledByPlayer,
		RefundAmount:  500,
		RefundPercent: 100,
		CancelledAt:   time.Now(),
	}

	// Активное бронирование отменяется
	mock.ExpectExec(`UPDATE bookings SET status = .+ WHERE id = .+ AND status IN \(.+\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Cancel(context.Background(), 5, params))

	// Уже отмененное: условный UPDATE не затрагивает строк, un-cancel невозможен
	mock.ExpectExec(`UPDATE bookings SET status = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Cancel(context.Background(), 5, params)
	require.ErrorIs(t, err, ErrAlreadyTerminal)
}

func TestCountMonthlyCancellations_ByRole(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	monthStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Игрок: счет по user_id и статусу cancelled_by_player
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE user_id = .+ AND status = .+ AND cancelled_at >= `).
		WithArgs(int64(42), string(domain.StatusCancelledByPlayer), monthStart).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountMonthlyCancellations(context.Background(), domain.RolePlayer, 42, monthStart)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Владелец: счет по owner_id по всем его площадкам
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE owner_id = .+ AND status = .+ AND cancelled_at >= `).
		WithArgs(int64(7), string(domain.StatusCancelledByOwner), monthStart).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))

	count, err = repo.CountMonthlyCancellations(context.Background(), domain.RoleOwner, 7, monthStart)
	require.NoError(t, err)
	require.Equal(t, 9, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireOrphanedPending(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	// Условие по слоту коррелировано: истекают только pending-строки,
	// чей слот available, booked или удержан другим пользователем
	mock.ExpectExec(`UPDATE bookings SET status = .+ WHERE status = .+ AND slot_id IN`).
		WithArgs(
			string(domain.StatusExpired),
			now,
			string(domain.StatusPending),
			string(domain.SlotAvailable),
			string(domain.SlotBooked),
			string(domain.SlotHeld),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	expired, err := repo.ExpireOrphanedPending(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), expired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetGatewayOrder_RequiresPending(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Все строки pending: привязка ордера проходит
	mock.ExpectExec(`UPDATE bookings SET gateway_order_id = .+ WHERE id IN \(.+\) AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.SetGatewayOrder(context.Background(), []int64{1, 2}, "order_1"))

	// Часть строк уже не pending: привязка отклоняется целиком
	mock.ExpectExec(`UPDATE bookings SET gateway_order_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetGatewayOrder(context.Background(), []int64{1, 2}, "order_1")
	require.Error(t, err)
}
