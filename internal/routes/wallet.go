package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/wallet"
)

// RegisterWalletRoutes wires snapshot reads and the investment write path.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets/:userID", h.GetSnapshot)
	r.Post("/wallets/:userID/investments", h.PostInvestment)
}
