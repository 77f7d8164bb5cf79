package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/ledger"
)

// RegisterLedgerRoutes wires the raw posting surface (admin credits/debits).
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/ledger/entries", h.Post)
	r.Post("/ledger/entries/:id/transition", h.Transition)
}
