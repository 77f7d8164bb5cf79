package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ReprojectFunc refreshes a user's wallet snapshot after a ledger mutation.
// It lives as a callback so the store package stays free of projection logic.
type ReprojectFunc func(ctx context.Context, userID string) error

// Handler exposes the raw posting surface used by admin credits/debits and
// internal tooling.
type Handler struct {
	store     Store
	reproject ReprojectFunc
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(store Store, reproject ReprojectFunc) *Handler {
	return &Handler{store: store, reproject: reproject}
}

type postRequest struct {
	UserID         string `json:"user_id"`
	Kind           string `json:"kind"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
	RelatedOrderID string `json:"related_order_id"`
	RelatedUserID  string `json:"related_user_id"`
	ExternalRef    string `json:"external_ref"`
	Note           string `json:"note"`
}

// Post appends a new ledger entry.
func (h *Handler) Post(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" || req.Kind == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id and kind required")
	}

	status := Status(req.Status)
	if req.Status == "" {
		status = StatusPending
	}

	entry, err := h.store.Append(c.UserContext(), Entry{
		UserID:         req.UserID,
		Kind:           Kind(req.Kind),
		Amount:         req.Amount,
		Status:         status,
		RelatedOrderID: req.RelatedOrderID,
		RelatedUserID:  req.RelatedUserID,
		ExternalRef:    req.ExternalRef,
		Note:           req.Note,
	})
	if err != nil {
		return mapStoreError(err)
	}

	// Pending entries still move projected balances (deposits land in hold),
	// so every append refreshes the snapshot.
	if err := h.reproject(c.UserContext(), entry.UserID); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"entry_id": entry.ID, "status": string(entry.Status)})
}

type transitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Transition moves a pending entry to a terminal status.
func (h *Handler) Transition(c *fiber.Ctx) error {
	var req transitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.store.Transition(c.UserContext(), c.Params("id"), Status(req.Status), req.Note)
	if err != nil {
		return mapStoreError(err)
	}

	if err := h.reproject(c.UserContext(), entry.UserID); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"entry_id": entry.ID, "status": string(entry.Status)})
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "entry not found")
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, "invalid status transition")
	case errors.Is(err, ErrDuplicateReference):
		return fiber.NewError(http.StatusConflict, "duplicate external reference")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
