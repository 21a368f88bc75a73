package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/fundflow/internal/domain"
)

func TestOutboxRepositoryCreate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("INSERT INTO outbox_events").
		WithArgs("evt-1", "fund-1", domain.AggregateTypeFund, domain.EventTypeFundCreated,
			[]byte(`{"name":"Growth I"}`), pgxmock.AnyArg(), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	event := &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "fund-1",
		AggregateType: domain.AggregateTypeFund,
		EventType:     domain.EventTypeFundCreated,
		Payload:       map[string]any{"name": "Growth I"},
		CreatedAt:     time.Now(),
	}

	if err := newOutboxRepository(pool).Create(context.Background(), tx, event); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM outbox_events WHERE NOT published").
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published",
		}).AddRow("evt-1", "call-1", domain.AggregateTypeCapitalCall, domain.EventTypeCapitalCallIssued,
			[]byte(`{"amount":"100"}`), now, pgtype.Timestamptz{}, false))

	events, err := newOutboxRepository(pool).GetUnpublished(context.Background(), 100)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Payload["amount"] != "100" {
		t.Fatalf("unexpected payload %v", events[0].Payload)
	}
	if events[0].PublishedAt != nil {
		t.Fatalf("expected unpublished event")
	}
}

func TestOutboxRepositoryMarkPublished(t *testing.T) {
	pool := newMockPool(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectExec("UPDATE outbox_events").
		WithArgs("evt-1", timeToPgTimestamptz(now)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := newOutboxRepository(pool).MarkPublished(context.Background(), "evt-1", now); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	assertExpectations(t, pool)
}
