package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	cancelBooking "github.com/m04kA/Turf-BookingService/internal/usecase/cancel_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgWrongState       = "бронирование уже отменено"
	msgTooLate          = "слот уже начался, отмена невозможна"
	msgLimitReached     = "исчерпан лимит отмен в этом месяце"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), &cancelBooking.Request{
		BookingID: bookingID,
		UserID:    userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/cancel - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/cancel - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelBooking.ErrWrongState):
			h.logger.Warn("POST /bookings/{id}/cancel - Wrong state: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgWrongState)

		case errors.Is(err, cancelBooking.ErrTooLateToCancel):
			h.logger.Warn("POST /bookings/{id}/cancel - Too late: booking_id=%d", bookingID)
			handlers.RespondBadRequest(w, msgTooLate)

		case errors.Is(err, cancelBooking.ErrMonthlyCancelLimitReached):
			h.logger.Warn("POST /bookings/{id}/cancel - Limit reached: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgLimitReached)

		case errors.Is(err, cancelBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/cancel - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - Cancelled: booking_id=%d, user_id=%d, refund=%.2f",
		bookingID, userID, resp.RefundAmount)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
