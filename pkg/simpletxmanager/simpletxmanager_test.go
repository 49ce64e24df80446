package simpletxmanager

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestDoSerializable_RetriesOnSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Конфликт сериализации: первая попытка откатывается, вторая проходит
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTransactionManager(db)

	attempts := 0
	err = m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_GivesUpAfterAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < serializableAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	m := NewTransactionManager(db)

	attempts := 0
	err = m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})

	require.Error(t, err)
	require.Equal(t, serializableAttempts, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDoSerializable_NoRetryOnOrdinaryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewTransactionManager(db)

	sentinel := errors.New("business rule violation")
	attempts := 0
	err = m.DoSerializable(context.Background(), func(ctx context.Context) error {
		attempts++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}
