package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// The in-memory repositories back the service when no database is configured.
// They report the same errors the Postgres implementations would
// (pgx.ErrNoRows, unique_violation) so callers cannot tell them apart.

type memoryTicketRepository struct {
	mu      sync.RWMutex
	now     func() time.Time
	tickets map[string]domain.Ticket
}

// NewMemoryTicketRepository returns a process-local TicketRepository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{now: dbNow, tickets: make(map[string]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ApplyDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepository) ListByOwner(_ context.Context, ownerID string, filter domain.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0)
	for _, ticket := range r.tickets {
		if ticket.OwnerID == ownerID && filter.Matches(ticket) {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, ownerID, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.owned(ownerID, id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ownerID, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.owned(ownerID, id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	patch.Apply(&ticket)
	next := r.now()
	if !next.After(ticket.UpdatedAt) {
		next = ticket.UpdatedAt.Add(time.Microsecond)
	}
	ticket.UpdatedAt = next
	r.tickets[id] = ticket
	return &ticket, nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, ownerID, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.owned(ownerID, id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return &ticket, nil
}

func (r *memoryTicketRepository) StatsByOwner(_ context.Context, ownerID string) (domain.TicketStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.TicketStats
	for _, ticket := range r.tickets {
		if ticket.OwnerID != ownerID {
			continue
		}
		stats.Total++
		switch ticket.Status {
		case domain.TicketStatusTodo:
			stats.Todo++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusDone:
			stats.Done++
		}
		if ticket.Priority == domain.TicketPriorityHigh {
			stats.HighPriority++
		}
	}
	return stats, nil
}

// owned must be called with r.mu held.
func (r *memoryTicketRepository) owned(ownerID, id string) (domain.Ticket, bool) {
	ticket, ok := r.tickets[id]
	if !ok || ticket.OwnerID != ownerID {
		return domain.Ticket{}, false
	}
	return ticket, true
}

type memoryUserRepository struct {
	mu      sync.RWMutex
	now     func() time.Time
	users   map[string]domain.User
	byEmail map[string]string
}

// NewMemoryUserRepository returns a process-local UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		now:     dbNow,
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", Message: "duplicate key value violates unique constraint"}
	}
	now := r.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.users[id]
	return &user, nil
}

func (r *memoryUserRepository) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.now()
	user.LastLogin = &now
	r.users[id] = user
	return nil
}

// dbNow mirrors Postgres timestamptz precision.
func dbNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
