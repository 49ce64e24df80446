package create_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	"github.com/m04kA/Turf-BookingService/internal/api/middleware"
	"github.com/m04kA/Turf-BookingService/internal/service/slots"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgFacilityNotFound   = "площадка не найдена"
	msgForbidden          = "доступ запрещен"
	msgSlotOverlap        = "слот пересекается с существующим"
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

// Handle POST /api/v1/owner/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	var req CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /owner/slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.CreateSlot(r.Context(), req.ToServiceRequest(ownerID))
	if err != nil {
		h.respondServiceError(w, "POST /owner/slots", err)
		return
	}

	h.logger.Info("POST /owner/slots - Created slot id=%d for facility=%d", resp.ID, req.FacilityID)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// HandleGrid POST /api/v1/owner/slots/grid
func (h *Handler) HandleGrid(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, msgForbidden)
		return
	}

	var req CreateSlotGridRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /owner/slots/grid - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.CreateSlotGrid(r.Context(), req.ToServiceRequest(ownerID))
	if err != nil {
		h.respondServiceError(w, "POST /owner/slots/grid", err)
		return
	}

	h.logger.Info("POST /owner/slots/grid - Created %d slots for facility=%d", resp.Total, req.FacilityID)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, slots.ErrFacilityNotFound):
		h.logger.Warn("%s - Facility not found: %v", route, err)
		handlers.RespondNotFound(w, msgFacilityNotFound)

	case errors.Is(err, slots.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: %v", route, err)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, slots.ErrSlotOverlap):
		h.logger.Warn("%s - Slot overlap: %v", route, err)
		handlers.RespondConflict(w, msgSlotOverlap)

	case errors.Is(err, slots.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
