package slot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
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

func TestClaimForUser_AllClaimed(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	heldUntil := now.Add(15 * time.Minute)

	// Условный UPDATE: захватываются только свободные строки,
	// репозиторий отдает количество захваченных
	mock.ExpectExec(`UPDATE slots SET status = .+ WHERE id IN \(.+\) AND \(status = .+ OR \(status = .+ AND held_by = .+\) OR \(status = .+ AND held_until < .+\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.ClaimForUser(context.Background(), []int64{10, 11}, 42, heldUntil, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimForUser_PartialClaim(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	// Один из двух слотов занят: UPDATE затрагивает одну строку.
	// Решение об откате принимает вызывающий код, репозиторий
	// только сообщает факт.
	mock.ExpectExec(`UPDATE slots SET status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.ClaimForUser(context.Background(), []int64{10, 11}, 42, now.Add(15*time.Minute), now)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBooked(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Переход held -> booked только для слотов, удержанных этим пользователем
	mock.ExpectExec(`UPDATE slots SET .*is_booked.* WHERE id IN \(.+\) AND held_by = .+ AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.MarkBooked(context.Background(), []int64{10}, 42)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkBooked_HoldLost(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Удержание истекло и слот ушел другому: ноль затронутых строк
	mock.ExpectExec(`UPDATE slots SET `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.MarkBooked(context.Background(), []int64{10}, 42)
	require.NoError(t, err)
	require.Equal(t, int64(0), affected)
}

func TestReleaseIfClaimed(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(`UPDATE slots SET .+ WHERE id IN \(.+\) AND status IN `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReleaseIfClaimed(context.Background(), 10)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseIfClaimed_AlreadyAvailable(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// Слот уже available (sweeper успел снять истекшее удержание) —
	// ноль затронутых строк не превращается в ошибку
	mock.ExpectExec(`UPDATE slots SET `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ReleaseIfClaimed(context.Background(), 99)
	require.NoError(t, err)
}

func TestReleaseExpiredHolds(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectExec(`UPDATE slots SET .+ WHERE status = .+ AND held_until < `).
		WillReturnResult(sqlmock.NewResult(0, 3))

	released, err := repo.ReleaseExpiredHolds(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, int64(3), released)
	require.NoError(t, mock.ExpectationsWereMet())
}
