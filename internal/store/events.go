package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const eventColumns = `id, name, starts_at, location, description, external_ref, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Name, &e.StartsAt, &e.Location, &e.Description,
		&e.ExternalRef, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

// CreateEvent inserts e and fills in its generated fields.
func (q *Queries) CreateEvent(ctx context.Context, e *Event) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO events (name, starts_at, location, description, external_ref)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		e.Name, e.StartsAt, e.Location, e.Description, e.ExternalRef,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateEvent writes all mutable fields of e back to the database.
func (q *Queries) UpdateEvent(ctx context.Context, e *Event) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE events SET name=$1, starts_at=$2, location=$3, description=$4,
			external_ref=$5, updated_at=now()
		WHERE id=$6`,
		e.Name, e.StartsAt, e.Location, e.Description, e.ExternalRef, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEvent fetches one event.
func (q *Queries) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
	return scanEvent(row)
}

// DeleteEvent removes an event. Attendance rows cascade.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns all events, most recent first.
func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
