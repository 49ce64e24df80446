package verify_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/Turf-BookingService/internal/api/handlers"
	verifyPayment "github.com/m04kA/Turf-BookingService/internal/usecase/verify_payment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSignature   = "неверная подпись платежа"
	msgNotFound           = "бронирование не найдено"
	msgWrongState         = "бронирование не может быть подтверждено"
	msgSlotUnavailable    = "слот больше не удерживается за этим бронированием"
)

type Handler struct {
	useCase VerifyPaymentUseCase
	logger  Logger
}

func NewHandler(useCase VerifyPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/verify
//
// Endpoint публичный: его дергает платежный шлюз, подлинность
// запроса доказывает подпись, а не заголовок пользователя.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/verify - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, verifyPayment.ErrInvalidSignature):
			// Детали уже в логах use case вместе с идентификаторами
			handlers.RespondBadRequest(w, msgInvalidSignature)

		case errors.Is(err, verifyPayment.ErrBookingNotFound):
			h.logger.Warn("POST /payments/verify - Booking not found: order=%s", req.OrderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, verifyPayment.ErrWrongState):
			h.logger.Warn("POST /payments/verify - Wrong state: order=%s", req.OrderID)
			handlers.RespondBadRequest(w, msgWrongState)

		case errors.Is(err, verifyPayment.ErrSlotUnavailable):
			h.logger.Warn("POST /payments/verify - Hold lost: order=%s", req.OrderID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, verifyPayment.ErrInvalidInput):
			h.logger.Warn("POST /payments/verify - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /payments/verify - Failed to verify: order=%s, error=%v", req.OrderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/verify - Confirmed: order=%s, bookings=%v", req.OrderID, resp.ConfirmedBookingIDs)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
