package paymentgw

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_123"
	paymentID := "pay_456"

	valid := Sign(secret, orderID, paymentID)

	require.True(t, VerifySignature(secret, orderID, paymentID, valid))

	// Любое расхождение в данных или подписи — отказ
	require.False(t, VerifySignature(secret, orderID, paymentID, valid+"x"))
	require.False(t, VerifySignature(secret, "order_999", paymentID, valid))
	require.False(t, VerifySignature(secret, orderID, "pay_999", valid))
	require.False(t, VerifySignature("wrong_secret", orderID, paymentID, valid))
	require.False(t, VerifySignature(secret, orderID, paymentID, ""))
}

func TestVerifySignature_PairBinding(t *testing.T) {
	// Подпись привязана к паре order|payment: перестановка не проходит
	secret := "test_secret"
	sig := Sign(secret, "a", "b")
	require.False(t, VerifySignature(secret, "b", "a", sig))

	// Разделитель исключает склейку границ
	require.False(t, VerifySignature(secret, "ab", "", Sign(secret, "a", "b")))
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{450.50, 45050},
		{99.99, 9999},
		// Округление до ближайшего против артефактов плавающей точки
		{0.1 + 0.2, 30},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, MinorUnits(tt.amount), "amount=%v", tt.amount)
	}
}
