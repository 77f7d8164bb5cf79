package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/payments"
)

// RegisterPaymentRoutes wires the payment-gateway callback endpoint.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/payments/confirm", h.Confirm)
}
