package domain

import "time"

// Политика отмен и платежей по умолчанию.
// Значения переопределяются секцией [policy] в config.toml,
// но шкала намеренно не усложняется: порог возврата жесткий,
// а не скользящий.
const (
	// DefaultRefundThreshold при отмене игроком раньше этого порога
	// до начала слота возврат 100%, позже — 0%
	DefaultRefundThreshold = 2 * time.Hour

	// Месячные квоты отмен (календарный месяц, не скользящие 30 дней)
	DefaultPlayerMonthlyCancelLimit = 5
	DefaultOwnerMonthlyCancelLimit  = 10

	// Штраф владельца за отмену: сбор за отмену + комиссия платформы
	DefaultOwnerCancelFee   = 30.0
	DefaultOwnerPlatformFee = 50.0

	// DefaultPlatformBookingFee фиксированная комиссия платформы
	// с каждого подтвержденного бронирования
	DefaultPlatformBookingFee = 50.0

	// DefaultHoldTTL время жизни удержания слота до подтверждения оплаты.
	// Брошенная корзина не должна блокировать слот дольше этого срока.
	DefaultHoldTTL = 15 * time.Minute

	// DefaultSweepInterval период фонового освобождения истекших удержаний
	DefaultSweepInterval = time.Minute
)

// Валидация слотов
const (
	MinSlotDurationMinutes = 30
	MaxSlotDurationMinutes = 240

	// MinCancellationReasonLength минимальная длина причины отмены
	// владельцем (после trim)
	MinCancellationReasonLength = 5
	MaxCancellationReasonLength = 500
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
