// Package reconcile decides, row by row, whether an imported record is a new
// guest, an update to an existing guest, or a no-op, and applies the decision
// inside the caller's transaction. A sibling engine links already-known
// guests to events.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

// GuestTx is the subset of store operations the guest engine needs. It is
// satisfied by *store.Queries; callers supply one bound to a transaction so
// a failed run commits nothing.
type GuestTx interface {
	FindGuestByNameOrEmail(ctx context.Context, userID int64, firstName, lastName, email string) (*store.Guest, error)
	CreateGuest(ctx context.Context, g *store.Guest) error
	UpdateGuest(ctx context.Context, g *store.Guest) error
}

// rowOutcome tags what the engine decided for a single row.
type rowOutcome int

const (
	outcomeCreated rowOutcome = iota
	outcomeUpdated
	outcomeSkippedNoChange
	outcomeSkippedUnnamed
)

// ImportGuests processes the table in row order for the given owner and
// returns a run summary. Rows without both names are counted and skipped;
// any other failure aborts the whole run with no rows applied (the caller
// rolls back the transaction).
func ImportGuests(ctx context.Context, tx GuestTx, table *tabular.Table, userID int64) (*GuestSummary, error) {
	mapping := tabular.MapHeaders(table.MatchableHeaders())
	if err := tabular.RequireNames(mapping, table.Headers); err != nil {
		return nil, err
	}

	summary := &GuestSummary{TotalRows: len(table.Rows)}

	for i, row := range table.Rows {
		outcome, label, err := reconcileGuestRow(ctx, tx, mapping, row, userID)
		if err != nil {
			return nil, &ImportError{Row: i + 1, Err: err}
		}

		switch outcome {
		case outcomeCreated:
			summary.Added++
		case outcomeUpdated:
			summary.Updated++
		case outcomeSkippedNoChange:
			summary.Skipped++
		case outcomeSkippedUnnamed:
			summary.Skipped++
			summary.SkippedNames = append(summary.SkippedNames, label)
		}
	}

	return summary, nil
}

// reconcileGuestRow applies the per-row algorithm: extract and clean the
// names, match an existing guest disjunctively (name pair or email), then
// either create a guest or backfill its empty fields.
func reconcileGuestRow(ctx context.Context, tx GuestTx, mapping map[tabular.Field]string, row tabular.Row, userID int64) (rowOutcome, string, error) {
	first := cleanCell(row[mapping[tabular.FieldFirstName]])
	last := cleanCell(row[mapping[tabular.FieldLastName]])

	if first == "" || last == "" {
		return outcomeSkippedUnnamed, first + " " + last, nil
	}

	email := ""
	if h, ok := mapping[tabular.FieldEmail]; ok {
		email = cleanCell(row[h])
	}

	existing, err := tx.FindGuestByNameOrEmail(ctx, userID, first, last, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, "", err
	}

	candidate := buildCandidate(mapping, row)

	if existing == nil {
		g := &store.Guest{
			UserID:    userID,
			FirstName: first,
			LastName:  last,
		}
		for _, f := range tabular.OptionalFields() {
			if v, ok := candidate[f]; ok {
				*fieldSlot(g, f) = v
			}
		}
		if g.DonorCapacity == "" {
			g.DonorCapacity = CapacityTBD
		}
		if err := tx.CreateGuest(ctx, g); err != nil {
			return 0, "", err
		}
		return outcomeCreated, g.FullName(), nil
	}

	changed := false
	for _, f := range tabular.OptionalFields() {
		v, ok := candidate[f]
		if !ok {
			continue
		}
		slot := fieldSlot(existing, f)

		// Donor capacity is authoritative from the most recent import;
		// every other field only backfills an empty value.
		if f == tabular.FieldDonorCapacity {
			if *slot != v {
				*slot = v
				changed = true
			}
			continue
		}
		if *slot == "" {
			*slot = v
			changed = true
		}
	}

	if !changed {
		return outcomeSkippedNoChange, existing.FullName(), nil
	}
	if err := tx.UpdateGuest(ctx, existing); err != nil {
		return 0, "", err
	}
	return outcomeUpdated, existing.FullName(), nil
}

// buildCandidate collects every mapped optional field that is present and
// non-empty in the row, applying the external-id and donor-capacity
// normalizations.
func buildCandidate(mapping map[tabular.Field]string, row tabular.Row) map[tabular.Field]string {
	candidate := make(map[tabular.Field]string)
	for _, f := range tabular.OptionalFields() {
		header, ok := mapping[f]
		if !ok {
			continue
		}
		v := cleanCell(row[header])
		if v == "" {
			continue
		}
		switch f {
		case tabular.FieldExternalID:
			v = normalizeExternalID(v)
		case tabular.FieldDonorCapacity:
			v = NormalizeCapacity(v)
		}
		candidate[f] = v
	}
	return candidate
}

// fieldSlot returns a pointer to the guest field backing a canonical field.
func fieldSlot(g *store.Guest, f tabular.Field) *string {
	switch f {
	case tabular.FieldPrefix:
		return &g.Prefix
	case tabular.FieldMiddleName:
		return &g.MiddleName
	case tabular.FieldNickname:
		return &g.Nickname
	case tabular.FieldDescriptor:
		return &g.Descriptor
	case tabular.FieldEmail:
		return &g.Email
	case tabular.FieldPhone:
		return &g.Phone
	case tabular.FieldOrganization:
		return &g.Organization
	case tabular.FieldTitle:
		return &g.Title
	case tabular.FieldExternalID:
		return &g.ExternalID
	case tabular.FieldRelationshipManager:
		return &g.RelationshipManager
	case tabular.FieldDonorCapacity:
		return &g.DonorCapacity
	case tabular.FieldBio:
		return &g.Bio
	case tabular.FieldNotes:
		return &g.Notes
	default:
		panic(fmt.Sprintf("no guest field for %q", f))
	}
}
