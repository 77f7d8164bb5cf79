package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/withdrawal"
)

// RegisterWithdrawalRoutes wires the payout request pipeline and the operator
// approval lifecycle.
func RegisterWithdrawalRoutes(r fiber.Router, h *withdrawal.Handler, rateLimit fiber.Handler) {
	r.Post("/withdrawals", rateLimit, h.Request)
	r.Post("/withdrawals/:id/approve", h.Approve)
	r.Post("/withdrawals/:id/cancel", h.Cancel)
	r.Get("/withdrawals/:userID/eligibility", h.Eligibility)
}
