package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/validation"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketsHandler manages the caller's ticket endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	validator *validation.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validator *validation.Validator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validator: validator}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := validation.DecodeJSON(c.Body(), &req); err != nil {
		return err
	}
	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	ticket, err := h.service.Create(c.UserContext(), ownerID, req.ToDomain(ownerID))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	var query dto.TicketListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query parameters", nil)
	}
	if err := h.validator.Struct(query); err != nil {
		return err
	}

	tickets, err := h.service.List(c.UserContext(), ownerID, query.ToFilter())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponses(tickets), "count": len(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := validation.DecodeJSON(c.Body(), &req); err != nil {
		return err
	}
	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	ticket, err := h.service.Update(c.UserContext(), ownerID, c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Delete(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// TicketStats GET /tickets/stats.
func (h *TicketsHandler) TicketStats(c *fiber.Ctx) error {
	ownerID, err := callerID(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketStatsResponse(stats)})
}

func callerID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.UserID, nil
}
