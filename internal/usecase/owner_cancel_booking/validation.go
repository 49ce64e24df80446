package owner_cancel_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/Turf-BookingService/internal/domain"
)

// validateRequest проверяет входные данные запроса.
// Причина отмены обязательна: владелец отменяет чужие деньги и должен
// объясниться перед игроком.
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId must be positive", ErrInvalidInput)
	}
	if req.OwnerID <= 0 {
		return fmt.Errorf("%w: ownerId must be positive", ErrInvalidInput)
	}

	reason := strings.TrimSpace(req.Reason)
	if len(reason) < domain.MinCancellationReasonLength {
		return fmt.Errorf("%w: reason must be at least %d characters",
			ErrInvalidReason, domain.MinCancellationReasonLength)
	}

	return nil
}
