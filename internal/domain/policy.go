package domain

import "time"

// CancellationPolicy параметры политики отмен и комиссий.
// Собирается из config.toml в main и передается в use case'ы.
type CancellationPolicy struct {
	RefundThreshold time.Duration

	PlayerMonthlyCancelLimit int
	OwnerMonthlyCancelLimit  int

	OwnerCancelFee   float64
	OwnerPlatformFee float64

	PlatformBookingFee float64

	HoldTTL time.Duration
}

// DefaultCancellationPolicy политика со значениями по умолчанию
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		RefundThreshold:          DefaultRefundThreshold,
		PlayerMonthlyCancelLimit: DefaultPlayerMonthlyCancelLimit,
		OwnerMonthlyCancelLimit:  DefaultOwnerMonthlyCancelLimit,
		OwnerCancelFee:           DefaultOwnerCancelFee,
		OwnerPlatformFee:         DefaultOwnerPlatformFee,
		PlatformBookingFee:       DefaultPlatformBookingFee,
		HoldTTL:                  DefaultHoldTTL,
	}
}

// OwnerPenalty суммарный штраф владельца за отмену бронирования
func (p CancellationPolicy) OwnerPenalty() float64 {
	return p.OwnerCancelFee + p.OwnerPlatformFee
}

// RefundPercentFor возвращает процент возврата для отмены игроком.
// Порог жесткий: ровно за RefundThreshold до начала — еще 100%,
// на секунду позже — уже 0%. Нулевое время начала (слот без даты/времени)
// трактуется консервативно как 0%.
func (p CancellationPolicy) RefundPercentFor(slotStart, now time.Time) int {
	if slotStart.IsZero() {
		return 0
	}
	if slotStart.Sub(now) >= p.RefundThreshold {
		return 100
	}
	return 0
}

// MonthStart начало текущего календарного месяца для окна квоты
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
