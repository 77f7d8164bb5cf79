package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/orders"
)

// RegisterOrderRoutes wires installment-order endpoints.
func RegisterOrderRoutes(r fiber.Router, svc *orders.Service) {
	r.Post("/orders", func(c *fiber.Ctx) error {
		var req struct {
			UserID            string `json:"user_id"`
			Amount            int64  `json:"amount"`
			TotalInstallments int    `json:"total_installments"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		order, err := svc.Create(c.UserContext(), orders.CreateInput{
			UserID:            req.UserID,
			Amount:            req.Amount,
			TotalInstallments: req.TotalInstallments,
		})
		if err != nil {
			if errors.Is(err, orders.ErrInvalidOrder) {
				return fiber.NewError(http.StatusBadRequest, "invalid order")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"order_id": order.ID, "status": string(order.Status)})
	})

	r.Get("/orders/:id", func(c *fiber.Ctx) error {
		order, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, orders.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "order not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"order_id":           order.ID,
			"user_id":            order.UserID,
			"amount":             order.Amount,
			"total_installments": order.TotalInstallments,
			"installments_paid":  order.InstallmentsPaid,
			"total_paid":         order.TotalPaid,
			"status":             string(order.Status),
			"created_at":         order.CreatedAt,
		})
	})
}
