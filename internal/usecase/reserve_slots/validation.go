package reserve_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if len(req.SlotIDs) == 0 {
		return fmt.Errorf("%w: slotIDs must not be empty", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(req.SlotIDs))
	for _, id := range req.SlotIDs {
		if id <= 0 {
			return fmt.Errorf("%w: slot id must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate slot id %d", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}
