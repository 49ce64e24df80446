package owner_cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	ownerCancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/owner_cancel_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "бронирование не найдено"
	msgUnauthorized       = "площадка принадлежит другому владельцу"
	msgWrongState         = "бронирование уже отменено"
	msgInvalidReason      = "причина отмены должна содержать не менее 5 символов"
	msgLimitReached       = "исчерпан лимит отмен в этом месяце"
)

type Handler struct {
	useCase OwnerCancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase OwnerCancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/owner/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /owner/bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req OwnerCancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /owner/bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &ownerCancelBooking.Request{
		BookingID: bookingID,
		OwnerID:   ownerID,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, ownerCancelBooking.ErrBookingNotFound):
			h.logger.Warn("POST /owner/bookings/{id}/cancel - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, ownerCancelBooking.ErrUnauthorized):
			h.logger.Warn("POST /owner/bookings/{id}/cancel - Unauthorized: booking_id=%d, owner_id=%d",
				bookingID, ownerID)
			handlers.RespondForbidden(w, msgUnauthorized)

		case errors.Is(err, ownerCancelBooking.ErrWrongState):
			h.logger.Warn("POST /owner/bookings/{id}/cancel - Wrong state: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgWrongState)

		case errors.Is(err, ownerCancelBooking.ErrInvalidReason):
			h.logger.Warn("POST /owner/bookings/{id}/cancel - Invalid reason: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgInvalidReason)

		case errors.Is(err, ownerCancelBooking.ErrMonthlyCancelLimitReached):
			h.logger.Warn("POST /owner/bookings/{id}/cancel - Limit reached: owner_id=%d", ownerID)
			handlers.RespondBadRequest(w, msgLimitReached)

		case errors.Is(err, ownerCancelBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /owner/bookings/{id}/cancel - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /owner/bookings/{id}/cancel - Cancelled: booking_id=%d, owner_id=%d, penalty=%.2f",
		bookingID, ownerID, resp.Penalty)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
