package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/commission"
)

// RegisterCommissionRoutes wires distribution and reconciliation endpoints.
func RegisterCommissionRoutes(r fiber.Router, h *commission.Handler) {
	r.Post("/commissions/distribute", h.Distribute)
	r.Get("/commissions/missing", h.Missing)
}
