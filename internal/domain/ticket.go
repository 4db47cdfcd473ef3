package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusTodo       TicketStatus = "todo"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusTodo, TicketStatusInProgress, TicketStatusDone:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// ErrNoFieldsToUpdate is returned when a patch carries no fields.
var ErrNoFieldsToUpdate = errors.New("no fields to update")

// Ticket is a support request owned by a single user.
type Ticket struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplyDefaults fills status and priority when they were not supplied.
func (t *Ticket) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TicketStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
}

// TicketPatch holds the fields a caller wants to change. Nil means untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
}

// IsEmpty reports whether the patch changes nothing.
func (p TicketPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// Apply copies the set fields onto t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// TicketFilter narrows an owner's ticket list. Unset fields do not restrict.
type TicketFilter struct {
	Status   *TicketStatus
	Priority *TicketPriority
}

// Matches reports whether t satisfies every set field of the filter.
func (f TicketFilter) Matches(t Ticket) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TicketStats aggregates an owner's tickets.
type TicketStats struct {
	Total        int64
	Todo         int64
	InProgress   int64
	Done         int64
	HighPriority int64
}
