package paymentgw

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature проверяет подпись callback'а шлюза:
// HMAC-SHA256(secret, orderID + "|" + paymentID) в hex.
// Сравнение константное по времени. Это единственная проверка
// подлинности callback'а — ни booking id, ни сумма из запроса
// клиента не являются доказательством оплаты.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.secret, orderID, paymentID, signature)
}

// VerifySignature версия без клиента, для тестов и переиспользования
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign подписывает пару order/payment — используется в тестах для
// генерации валидных подписей
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
