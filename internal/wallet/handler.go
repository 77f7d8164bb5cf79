package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetSnapshot returns the user's current wallet snapshot.
func (h *Handler) GetSnapshot(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return fiber.NewError(http.StatusBadRequest, "user id required")
	}

	snapshot, err := h.service.Snapshot(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(snapshot)
}

type investmentRequest struct {
	Amount  int64  `json:"amount"`
	OrderID string `json:"order_id"`
}

// PostInvestment records an investment against the user's locked bonus.
func (h *Handler) PostInvestment(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return fiber.NewError(http.StatusBadRequest, "user id required")
	}

	var req investmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	entryID, err := h.service.PostInvestment(c.UserContext(), userID, req.Amount, req.OrderID)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return fiber.NewError(http.StatusBadRequest, "amount must be positive")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"entry_id": entryID})
}
