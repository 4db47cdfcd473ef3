package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Every operation is scoped
// to the owner: a ticket owned by someone else is reported as pgx.ErrNoRows,
// exactly like a ticket that does not exist.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	ListByOwner(ctx context.Context, ownerID string, filter domain.TicketFilter) ([]domain.Ticket, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Ticket, error)
	Update(ctx context.Context, ownerID, id string, patch domain.TicketPatch) (*domain.Ticket, error)
	Delete(ctx context.Context, ownerID, id string) (*domain.Ticket, error)
	StatsByOwner(ctx context.Context, ownerID string) (domain.TicketStats, error)
}

const ticketColumns = `id, user_id, title, description, status, priority, created_at, updated_at`

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ApplyDefaults()
	const query = `
        INSERT INTO tickets (user_id, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"user_id=$1"}
	args := []any{ownerID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND user_id=$2`
	return scanTicket(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *ticketRepository) Update(ctx context.Context, ownerID, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		sets = append(sets, fmt.Sprintf("priority=$%d", len(args)))
	}
	// updated_at must move forward even when two updates land in the same clock tick.
	sets = append(sets, "updated_at=GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')")
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d AND user_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), ticketColumns)
	return scanTicket(r.db.QueryRow(ctx, query, args...))
}

func (r *ticketRepository) Delete(ctx context.Context, ownerID, id string) (*domain.Ticket, error) {
	query := `DELETE FROM tickets WHERE id=$1 AND user_id=$2 RETURNING ` + ticketColumns
	return scanTicket(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *ticketRepository) StatsByOwner(ctx context.Context, ownerID string) (domain.TicketStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='todo'),
               COUNT(*) FILTER (WHERE status='in_progress'),
               COUNT(*) FILTER (WHERE status='done'),
               COUNT(*) FILTER (WHERE priority='high')
        FROM tickets WHERE user_id=$1`
	var stats domain.TicketStats
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&stats.Total,
		&stats.Todo,
		&stats.InProgress,
		&stats.Done,
		&stats.HighPriority,
	)
	return stats, err
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
