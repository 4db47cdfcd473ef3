package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title" validate:"required,min=3,max=200"`
	Description string                `json:"description" validate:"required,min=1,max=1000"`
	Status      domain.TicketStatus   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// Normalize trims surrounding whitespace from the title.
func (r *CreateTicketRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// ToDomain builds a ticket for owner with defaults applied.
func (r CreateTicketRequest) ToDomain(ownerID string) *domain.Ticket {
	ticket := &domain.Ticket{
		OwnerID:     ownerID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
	ticket.ApplyDefaults()
	return ticket
}

// UpdateTicketRequest payload. Absent or null fields are left untouched.
type UpdateTicketRequest struct {
	Title       *string                `json:"title" validate:"omitnil,min=3,max=200"`
	Description *string                `json:"description" validate:"omitnil,min=1,max=1000"`
	Status      *domain.TicketStatus   `json:"status" validate:"omitnil,oneof=todo in_progress done"`
	Priority    *domain.TicketPriority `json:"priority" validate:"omitnil,oneof=low medium high"`
}

// Normalize trims surrounding whitespace from the title.
func (r *UpdateTicketRequest) Normalize() {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
}

// ToPatch converts the request into a domain patch.
func (r UpdateTicketRequest) ToPatch() domain.TicketPatch {
	return domain.TicketPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}

// TicketListQuery captures query filters for the list endpoint.
type TicketListQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high"`
}

// ToFilter converts validated query values into a domain filter.
func (q TicketListQuery) ToFilter() domain.TicketFilter {
	var filter domain.TicketFilter
	if q.Status != "" {
		status := domain.TicketStatus(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := domain.TicketPriority(q.Priority)
		filter.Priority = &priority
	}
	return filter
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketResponses maps a list, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}

// TicketStatsResponse aggregates a caller's tickets.
type TicketStatsResponse struct {
	Total        int64 `json:"total"`
	Todo         int64 `json:"todo"`
	InProgress   int64 `json:"in_progress"`
	Done         int64 `json:"done"`
	HighPriority int64 `json:"high_priority"`
}

// NewTicketStatsResponse maps domain stats.
func NewTicketStatsResponse(s domain.TicketStats) TicketStatsResponse {
	return TicketStatsResponse{
		Total:        s.Total,
		Todo:         s.Todo,
		InProgress:   s.InProgress,
		Done:         s.Done,
		HighPriority: s.HighPriority,
	}
}
