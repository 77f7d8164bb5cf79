package withdrawal

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/ledger"
)

// Handler exposes withdrawal endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a withdrawal handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type requestBody struct {
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	DestinationID string `json:"destination_id"`
}

// Request submits a withdrawal through the precondition pipeline.
func (h *Handler) Request(c *fiber.Ctx) error {
	var req requestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	entryID, err := h.service.Request(c.UserContext(), req.UserID, req.Amount, req.DestinationID)
	if err != nil {
		var spend *SpendRequirementError
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		case errors.Is(err, ErrInvalidDestination):
			return fiber.NewError(http.StatusBadRequest, "invalid payout destination")
		case errors.Is(err, ErrKycRequired):
			return fiber.NewError(http.StatusForbidden, "kyc approval required")
		case errors.Is(err, ErrDestinationRequired):
			return fiber.NewError(http.StatusPreconditionFailed, "payout destination required")
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusUnprocessableEntity, "insufficient spendable balance")
		case errors.As(err, &spend):
			return c.Status(http.StatusPreconditionFailed).JSON(fiber.Map{
				"error":           "spend requirement not met",
				"spend_required":  spend.Required,
				"spend_spent":     spend.Spent,
				"spend_remaining": spend.Remaining,
			})
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"entry_id": entryID, "status": string(ledger.StatusPending)})
}

// Approve completes a pending withdrawal (operator action).
func (h *Handler) Approve(c *fiber.Ctx) error {
	if err := h.service.Approve(c.UserContext(), c.Params("id")); err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(fiber.Map{"status": string(ledger.StatusCompleted)})
}

type cancelBody struct {
	Reason string `json:"reason"`
}

// Cancel voids a pending withdrawal (operator action, reason required).
func (h *Handler) Cancel(c *fiber.Ctx) error {
	var req cancelBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Cancel(c.UserContext(), c.Params("id"), req.Reason); err != nil {
		if errors.Is(err, ErrReasonRequired) {
			return fiber.NewError(http.StatusBadRequest, "cancellation reason required")
		}
		return mapLifecycleError(err)
	}
	return c.JSON(fiber.Map{"status": string(ledger.StatusCancelled)})
}

// Eligibility reports the user's withdrawal gates.
func (h *Handler) Eligibility(c *fiber.Ctx) error {
	eligibility, err := h.service.Eligibility(c.UserContext(), c.Params("userID"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(eligibility)
}

func mapLifecycleError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "withdrawal not found")
	case errors.Is(err, ledger.ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, "invalid status transition")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
