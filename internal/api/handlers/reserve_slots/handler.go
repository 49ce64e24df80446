package reserve_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	reserveSlots "github.com/m04kA/Turf-BookingService/internal/usecase/reserve_slots"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgSlotsUnavailable    = "часть выбранных слотов уже занята"
	msgSlotNotFound        = "слот не найден"
	msgOwnershipMismatch   = "слоты должны принадлежать одной площадке"
	msgFacilityNotApproved = "площадка не прошла модерацию"
	msgGatewayUnavailable  = "платежный шлюз временно недоступен"
)

type Handler struct {
	useCase ReserveSlotsUseCase
	logger  Logger
}

func NewHandler(useCase ReserveSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/reserve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgInvalidRequestBody)
		return
	}

	var req ReserveSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/reserve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		var unavailable *reserveSlots.SlotsUnavailableError
		switch {
		case errors.As(err, &unavailable):
			h.logger.Warn("POST /bookings/reserve - Slots unavailable: user_id=%d, slots=%v",
				userID, unavailable.SlotIDs)
			handlers.RespondJSON(w, http.StatusConflict, UnavailableSlotsResponse{
				Error:              msgSlotsUnavailable,
				UnavailableSlotIDs: unavailable.SlotIDs,
			})

		case errors.Is(err, reserveSlots.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings/reserve - Slots unavailable: user_id=%d", userID)
			handlers.RespondConflict(w, msgSlotsUnavailable)

		case errors.Is(err, reserveSlots.ErrSlotNotFound):
			h.logger.Warn("POST /bookings/reserve - Slot not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, reserveSlots.ErrOwnershipMismatch):
			h.logger.Warn("POST /bookings/reserve - Ownership mismatch: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgOwnershipMismatch)

		case errors.Is(err, reserveSlots.ErrFacilityNotApproved):
			h.logger.Warn("POST /bookings/reserve - Facility not approved: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgFacilityNotApproved)

		case errors.Is(err, reserveSlots.ErrInvalidInput):
			h.logger.Warn("POST /bookings/reserve - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, reserveSlots.ErrPaymentGatewayUnavailable):
			h.logger.Error("POST /bookings/reserve - Payment gateway unavailable: user_id=%d", userID)
			handlers.RespondBadGateway(w, msgGatewayUnavailable)

		default:
			h.logger.Error("POST /bookings/reserve - Failed to reserve: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/reserve - Reserved: user_id=%d, bookings=%v, order=%s",
		userID, resp.BookingIDs, resp.OrderID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
