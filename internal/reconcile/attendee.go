package reconcile

import (
	"context"
	"errors"

	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

// AttendeeTx is the subset of store operations the attendee engine needs.
// Satisfied by *store.Queries bound to a transaction.
type AttendeeTx interface {
	FindGuestByName(ctx context.Context, firstName, lastName string) (*store.Guest, error)
	AttendanceExists(ctx context.Context, guestID, eventID int64) (bool, error)
	CreateAttendance(ctx context.Context, a *store.Attendance) error
}

// ImportAttendees links guests named in the table to the event, row by row.
// The guest lookup matches the name pair across all users, not just the
// importing user's directory. Rows without both names are skipped; names with
// no matching guest are collected under NotFound. Any other failure aborts
// the run (the caller rolls back the transaction).
func ImportAttendees(ctx context.Context, tx AttendeeTx, table *tabular.Table, eventID int64) (*AttendeeSummary, error) {
	mapping := tabular.MapHeaders(table.MatchableHeaders())
	if err := tabular.RequireNames(mapping, table.Headers); err != nil {
		return nil, err
	}

	summary := &AttendeeSummary{TotalRows: len(table.Rows)}

	for i, row := range table.Rows {
		first := cleanCell(row[mapping[tabular.FieldFirstName]])
		last := cleanCell(row[mapping[tabular.FieldLastName]])
		if first == "" || last == "" {
			continue
		}

		guest, err := tx.FindGuestByName(ctx, first, last)
		if errors.Is(err, store.ErrNotFound) {
			summary.NotFound++
			summary.NotFoundNames = append(summary.NotFoundNames, first+" "+last)
			continue
		}
		if err != nil {
			return nil, &ImportError{Row: i + 1, Err: err}
		}

		exists, err := tx.AttendanceExists(ctx, guest.ID, eventID)
		if err != nil {
			return nil, &ImportError{Row: i + 1, Err: err}
		}
		if exists {
			summary.Existing++
			continue
		}

		a := &store.Attendance{GuestID: guest.ID, EventID: eventID}
		if err := tx.CreateAttendance(ctx, a); err != nil {
			return nil, &ImportError{Row: i + 1, Err: err}
		}
		summary.Added++
	}

	return summary, nil
}
