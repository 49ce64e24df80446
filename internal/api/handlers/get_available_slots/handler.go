package get_available_slots

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/internal/service/slots/models"
)

const (
	msgInvalidFacilityID = "некорректный ID площадки"
	msgInvalidDate       = "некорректная дата, ожидается YYYY-MM-DD"
	msgMissingDate       = "требуется параметр date"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/facilities/{facilityId}/slots?date=
//
// Endpoint публичный. Заголовок X-User-ID опционален: с ним слоты,
// удержанные самим пользователем, отдаются как available.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	facilityID, err := strconv.ParseInt(vars["facilityId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/slots - Invalid facility ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFacilityID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /facilities/{id}/slots - Invalid date: %s", dateStr)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	var userID int64
	if userIDStr := r.Header.Get("X-User-ID"); userIDStr != "" {
		userID, _ = strconv.ParseInt(userIDStr, 10, 64)
	}

	resp, err := h.service.GetAvailableSlots(r.Context(), &models.GetAvailableSlotsRequest{
		FacilityID: facilityID,
		Date:       date,
		UserID:     userID,
	})
	if err != nil {
		h.logger.Error("GET /facilities/{id}/slots - Failed: facility_id=%d, error=%v", facilityID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
