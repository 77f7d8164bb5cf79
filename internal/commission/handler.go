package commission

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/ledger"
)

// Handler exposes distribution endpoints for settlement operators and the
// reconciliation job.
type Handler struct {
	service *Service
}

// NewHandler constructs a commission handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type distributeRequest struct {
	EntryID string `json:"entry_id"`
}

// Distribute runs commission fan-out for a completed EMI payment entry.
func (h *Handler) Distribute(c *fiber.Ctx) error {
	var req distributeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Distribute(c.UserContext(), req.EntryID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "entry not found")
		case errors.Is(err, ErrNotDistributable):
			return fiber.NewError(http.StatusUnprocessableEntity, "entry is not a completed emi payment")
		case errors.Is(err, ErrDuplicateDistribution):
			return fiber.NewError(http.StatusConflict, "commission already distributed")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(result)
}

// Missing lists completed EMI payments still awaiting distribution.
func (h *Handler) Missing(c *fiber.Ctx) error {
	missing, err := h.service.MissingDistributions(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(missing))
	for _, entry := range missing {
		ids = append(ids, entry.ID)
	}
	return c.JSON(fiber.Map{"missing_entry_ids": ids})
}
