package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

func newTicketService() *TicketService {
	return NewTicketService(repository.NewMemoryTicketRepository())
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T", err)
	return domainErr.Code
}

func mustCreate(t *testing.T, svc *TicketService, owner string, ticket domain.Ticket) *domain.Ticket {
	t.Helper()
	created, err := svc.Create(context.Background(), owner, &ticket)
	require.NoError(t, err)
	return created
}

func TestTicketService_CreateAppliesDefaults(t *testing.T) {
	svc := newTicketService()
	created := mustCreate(t, svc, "alice", domain.Ticket{Title: "VPN down", Description: "cannot connect"})

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.OwnerID)
	assert.Equal(t, domain.TicketStatusTodo, created.Status)
	assert.Equal(t, domain.TicketPriorityMedium, created.Priority)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestTicketService_CreateRejectsUnknownEnum(t *testing.T) {
	svc := newTicketService()
	_, err := svc.Create(context.Background(), "alice", &domain.Ticket{Title: "abc", Description: "d", Status: "blocked"})
	assert.Equal(t, apperrors.CodeValidationFailed, errCode(t, err))
}

func TestTicketService_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()
	mine := mustCreate(t, svc, "alice", domain.Ticket{Title: "Mine", Description: "d"})

	_, err := svc.Get(ctx, "bob", mine.ID)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))

	title := "stolen"
	_, err = svc.Update(ctx, "bob", mine.ID, domain.TicketPatch{Title: &title})
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))

	_, err = svc.Delete(ctx, "bob", mine.ID)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))

	bobs, err := svc.List(ctx, "bob", domain.TicketFilter{})
	require.NoError(t, err)
	assert.Empty(t, bobs)

	stats, err := svc.Stats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStats{}, stats)

	got, err := svc.Get(ctx, "alice", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestTicketService_MissingAndMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()

	for _, id := range []string{uuid.NewString(), "not-a-uuid", ""} {
		_, err := svc.Get(ctx, "alice", id)
		assert.Equal(t, apperrors.CodeNotFound, errCode(t, err), id)
		_, err = svc.Delete(ctx, "alice", id)
		assert.Equal(t, apperrors.CodeNotFound, errCode(t, err), id)
	}
}

func TestTicketService_UpdatePartialAndMonotonic(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()
	created := mustCreate(t, svc, "alice", domain.Ticket{Title: "Printer", Description: "jammed", Priority: domain.TicketPriorityLow})

	status := domain.TicketStatusInProgress
	first, err := svc.Update(ctx, "alice", created.ID, domain.TicketPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, first.Status)
	assert.Equal(t, "Printer", first.Title)
	assert.Equal(t, "jammed", first.Description)
	assert.Equal(t, domain.TicketPriorityLow, first.Priority)
	assert.Equal(t, created.CreatedAt, first.CreatedAt)
	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))

	second, err := svc.Update(ctx, "alice", created.ID, domain.TicketPatch{Status: &status})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestTicketService_EmptyPatch(t *testing.T) {
	svc := newTicketService()
	created := mustCreate(t, svc, "alice", domain.Ticket{Title: "abc", Description: "d"})

	_, err := svc.Update(context.Background(), "alice", created.ID, domain.TicketPatch{})
	assert.Equal(t, apperrors.CodeNoFields, errCode(t, err))

	// checked before ownership so a foreign id still reports the empty patch
	_, err = svc.Update(context.Background(), "bob", "not-a-uuid", domain.TicketPatch{})
	assert.Equal(t, apperrors.CodeNoFields, errCode(t, err))
}

func TestTicketService_ListFiltersAndStats(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()

	mustCreate(t, svc, "alice", domain.Ticket{Title: "one", Description: "d", Priority: domain.TicketPriorityHigh})
	mustCreate(t, svc, "alice", domain.Ticket{Title: "two", Description: "d", Status: domain.TicketStatusDone})
	mustCreate(t, svc, "alice", domain.Ticket{Title: "three", Description: "d", Status: domain.TicketStatusDone, Priority: domain.TicketPriorityHigh})
	mustCreate(t, svc, "bob", domain.Ticket{Title: "other", Description: "d"})

	all, err := svc.List(ctx, "alice", domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "list must be newest first")
	}

	done := domain.TicketStatusDone
	high := domain.TicketPriorityHigh
	both, err := svc.List(ctx, "alice", domain.TicketFilter{Status: &done, Priority: &high})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "three", both[0].Title)

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(len(all)), stats.Total)
	assert.Equal(t, domain.TicketStats{Total: 3, Todo: 1, Done: 2, HighPriority: 2}, stats)
}

func TestTicketService_StatsTwoTicketScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()

	mustCreate(t, svc, "alice", domain.Ticket{Title: "first", Description: "d", Priority: domain.TicketPriorityHigh})
	second := mustCreate(t, svc, "alice", domain.Ticket{Title: "second", Description: "d"})
	done := domain.TicketStatusDone
	_, err := svc.Update(ctx, "alice", second.ID, domain.TicketPatch{Status: &done})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStats{Total: 2, Todo: 1, Done: 1, HighPriority: 1}, stats)
}

func TestTicketService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()
	created := mustCreate(t, svc, "alice", domain.Ticket{Title: "gone soon", Description: "d"})

	deleted, err := svc.Delete(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "gone soon", deleted.Title)

	_, err = svc.Get(ctx, "alice", created.ID)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))
	_, err = svc.Delete(ctx, "alice", created.ID)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))
}

func TestTicketService_AcceptsNonCanonicalIDForms(t *testing.T) {
	ctx := context.Background()
	svc := newTicketService()
	created := mustCreate(t, svc, "alice", domain.Ticket{Title: "Upper", Description: "d"})

	for _, id := range []string{
		strings.ToUpper(created.ID),
		"urn:uuid:" + created.ID,
		"{" + created.ID + "}",
	} {
		got, err := svc.Get(ctx, "alice", id)
		require.NoError(t, err, id)
		assert.Equal(t, created.ID, got.ID, id)
	}

	title := "Renamed"
	updated, err := svc.Update(ctx, "alice", strings.ToUpper(created.ID), domain.TicketPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	deleted, err := svc.Delete(ctx, "alice", "urn:uuid:"+created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
}

func TestCanonicalID(t *testing.T) {
	id := uuid.NewString()

	got, ok := canonicalID("URN:UUID:" + strings.ToUpper(id))
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = canonicalID("12345")
	assert.False(t, ok)
}
