package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qistline/qistline/internal/profile"
)

// RegisterProfileRoutes wires registration and payout-destination endpoints.
func RegisterProfileRoutes(r fiber.Router, svc *profile.Service) {
	r.Post("/users", func(c *fiber.Ctx) error {
		var req struct {
			Phone      string `json:"phone"`
			PIN        string `json:"pin"`
			ReferredBy string `json:"referred_by"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := svc.Register(c.UserContext(), profile.RegisterInput{
			Phone:      req.Phone,
			PIN:        req.PIN,
			ReferredBy: req.ReferredBy,
		})
		if err != nil {
			switch {
			case errors.Is(err, profile.ErrPhoneTaken):
				return fiber.NewError(http.StatusConflict, "phone already registered")
			case errors.Is(err, profile.ErrReferrerNotFound):
				return fiber.NewError(http.StatusBadRequest, "referrer not found")
			default:
				return fiber.NewError(http.StatusBadRequest, err.Error())
			}
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id":     user.ID,
			"phone":       user.Phone,
			"referred_by": user.ReferredBy,
			"created_at":  user.CreatedAt,
		})
	})

	r.Post("/users/:id/destinations", func(c *fiber.Ctx) error {
		var req struct {
			Method        string `json:"method"`
			BankName      string `json:"bank_name"`
			AccountNumber string `json:"account_number"`
			AccountName   string `json:"account_name"`
			Handle        string `json:"handle"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		dest, err := svc.AddDestination(c.UserContext(), profile.PayoutDestination{
			UserID:        c.Params("id"),
			Method:        profile.DestinationMethod(req.Method),
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
			Handle:        req.Handle,
		})
		if err != nil {
			switch {
			case errors.Is(err, profile.ErrNotFound):
				return fiber.NewError(http.StatusNotFound, "user not found")
			case errors.Is(err, profile.ErrInvalidDestination):
				return fiber.NewError(http.StatusBadRequest, "invalid payout destination")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{"destination_id": dest.ID})
	})
}
