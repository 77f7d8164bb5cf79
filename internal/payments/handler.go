package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/ledger"
)

// Handler exposes the gateway confirmation endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type confirmRequest struct {
	ExternalRef string `json:"external_ref"`
	Success     bool   `json:"success"`
}

// Confirm records a gateway payment outcome.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ExternalRef == "" {
		return fiber.NewError(http.StatusBadRequest, "external_ref required")
	}

	result, err := h.service.Confirm(c.UserContext(), req.ExternalRef, req.Success)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "no entry for reference")
		case errors.Is(err, ErrAlreadySettled):
			return fiber.NewError(http.StatusConflict, "payment already settled")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(result)
}
