package create_slots

import (
	"context"

	"github.com/m04kA/Turf-BookingService/internal/service/slots/models"
)

type SlotService interface {
	CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error)
	CreateSlotGrid(ctx context.Context, req *models.CreateSlotGridRequest) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
