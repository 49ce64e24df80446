package get_cancellation_info

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
)

// CancellationInfoResponse HTTP response model
type CancellationInfoResponse struct {
	BookingID              int64   `json:"bookingId"`
	CanCancel              bool    `json:"canCancel"`
	Reason                 string  `json:"reason,omitempty"`
	RefundAmount           float64 `json:"refundAmount"`
	RefundPercent          int     `json:"refundPercent"`
	CancellationsRemaining int     `json:"cancellationsRemaining"`
}

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

// Handle GET /api/v1/bookings/{bookingId}/cancellation-info
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /bookings/{id}/cancellation-info - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	info, err := h.useCase.GetCancellationInfo(r.Context(), bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, cancelBooking.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{id}/cancellation-info - Not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelBooking.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id}/cancellation-info - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("GET /bookings/{id}/cancellation-info - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CancellationInfoResponse{
		BookingID:              info.BookingID,
		CanCancel:              info.CanCancel,
		Reason:                 info.Reason,
		RefundAmount:           info.RefundAmount,
		RefundPercent:          info.RefundPercent,
		CancellationsRemaining: info.CancellationsRemaining,
	})
}
