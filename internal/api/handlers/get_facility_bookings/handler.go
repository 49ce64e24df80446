package get_facility_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/service/bookings"
	"github.com/m04kA/Turf-BookingService/internal/service/bookings/models"
	"github.com/m04kA/Turf-BookingService/pkg/ptr"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidDate       = "некорректная дата, ожидается YYYY-MM-DD"
	msgInvalidStatus     = "некорректный статус бронирования"
	msgForbidden         = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/bookings?date=&status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	vars := mux.Vars(r)
	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/bookings - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	req := &models.GetFacilityBookingsRequest{
		OwnerID:    ownerID,
		FacilityID: facilityID,
	}

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			h.logger.Warn("GET /facilities/{id}/bookings - Invalid date: %s", dateStr)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = ptr.Ptr(status)
	}

	resp, err := h.service.GetFacilityBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /facilities/{id}/bookings - Access denied: facility_id=%d, owner_id=%d",
				facilityID, ownerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /facilities/{id}/bookings - Failed: facility_id=%d, error=%v", facilityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
