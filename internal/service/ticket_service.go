package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketService coordinates owner-scoped ticket workflows.
type TicketService struct {
	tickets repository.TicketRepository
}

// NewTicketService creates a ticket service.
func NewTicketService(tickets repository.TicketRepository) *TicketService {
	return &TicketService{tickets: tickets}
}

// Create stores a new ticket for ownerID.
func (s *TicketService) Create(ctx context.Context, ownerID string, ticket *domain.Ticket) (*domain.Ticket, error) {
	ticket.OwnerID = ownerID
	ticket.ApplyDefaults()
	if !ticket.Status.Valid() || !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("request validation failed", map[string]any{
			"status":   "must be one of: todo, in_progress, done",
			"priority": "must be one of: low, medium, high",
		})
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// List returns the owner's tickets matching filter, newest first.
func (s *TicketService) List(ctx context.Context, ownerID string, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// Get returns one of the owner's tickets.
func (s *TicketService) Get(ctx context.Context, ownerID, id string) (*domain.Ticket, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, ticketNotFound()
	}
	ticket, err := s.tickets.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapTicketError(err)
	}
	return ticket, nil
}

// Update applies patch to one of the owner's tickets.
func (s *TicketService) Update(ctx context.Context, ownerID, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if patch.IsEmpty() {
		return nil, apperrors.NewNoFieldsError()
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, ticketNotFound()
	}
	ticket, err := s.tickets.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, mapTicketError(err)
	}
	return ticket, nil
}

// Delete removes one of the owner's tickets and returns its last state.
func (s *TicketService) Delete(ctx context.Context, ownerID, id string) (*domain.Ticket, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, ticketNotFound()
	}
	ticket, err := s.tickets.Delete(ctx, ownerID, id)
	if err != nil {
		return nil, mapTicketError(err)
	}
	return ticket, nil
}

// Stats aggregates the owner's tickets.
func (s *TicketService) Stats(ctx context.Context, ownerID string) (domain.TicketStats, error) {
	stats, err := s.tickets.StatsByOwner(ctx, ownerID)
	if err != nil {
		return domain.TicketStats{}, apperrors.NewInternalError(err)
	}
	return stats, nil
}

func mapTicketError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ticketNotFound()
	case errors.Is(err, domain.ErrNoFieldsToUpdate):
		return apperrors.NewNoFieldsError()
	}
	return apperrors.NewInternalError(err)
}

func ticketNotFound() error {
	return apperrors.NewNotFound("ticket", nil)
}

// canonicalID normalizes any form uuid.Parse accepts to the lower-case
// hyphenated form that Postgres renders and the stores key on.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
