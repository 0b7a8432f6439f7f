package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

// fakeTx is an in-memory stand-in for *store.Queries. It mirrors the store's
// matching semantics (case-insensitive, disjunctive) and can be told to fail
// after a number of writes to exercise abort behavior.
type fakeTx struct {
	guests     []*store.Guest
	attendance []*store.Attendance
	nextID     int64

	failAfterWrites int // fail once this many writes have happened; 0 disables
	writes          int
}

var errInjected = errors.New("injected storage failure")

func (f *fakeTx) write() error {
	f.writes++
	if f.failAfterWrites > 0 && f.writes > f.failAfterWrites {
		return errInjected
	}
	return nil
}

func (f *fakeTx) FindGuestByNameOrEmail(_ context.Context, userID int64, firstName, lastName, email string) (*store.Guest, error) {
	for _, g := range f.guests {
		if g.UserID != userID {
			continue
		}
		if strings.EqualFold(g.FirstName, firstName) && strings.EqualFold(g.LastName, lastName) {
			return g, nil
		}
		if email != "" && g.Email != "" && strings.EqualFold(g.Email, email) {
			return g, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTx) FindGuestByName(_ context.Context, firstName, lastName string) (*store.Guest, error) {
	for _, g := range f.guests {
		if strings.EqualFold(g.FirstName, firstName) && strings.EqualFold(g.LastName, lastName) {
			return g, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeTx) CreateGuest(_ context.Context, g *store.Guest) error {
	if err := f.write(); err != nil {
		return err
	}
	f.nextID++
	g.ID = f.nextID
	f.guests = append(f.guests, g)
	return nil
}

func (f *fakeTx) UpdateGuest(_ context.Context, g *store.Guest) error {
	return f.write()
}

func (f *fakeTx) AttendanceExists(_ context.Context, guestID, eventID int64) (bool, error) {
	for _, a := range f.attendance {
		if a.GuestID == guestID && a.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTx) CreateAttendance(_ context.Context, a *store.Attendance) error {
	if err := f.write(); err != nil {
		return err
	}
	f.nextID++
	a.ID = f.nextID
	f.attendance = append(f.attendance, a)
	return nil
}

// mkTable builds a Table from a header list and row values.
func mkTable(headers []string, rows ...[]string) *tabular.Table {
	t := &tabular.Table{Headers: headers}
	for _, vals := range rows {
		row := make(tabular.Row, len(headers))
		for i, h := range headers {
			if i < len(vals) {
				row[h] = vals[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

const userID = int64(7)

func TestImportGuests_EndToEnd(t *testing.T) {
	// The canonical scenario: one good row, one unnamed row, against an
	// empty directory.
	tx := &fakeTx{}
	table := mkTable(
		[]string{"First Name", "Last Name", "Email", "Rating"},
		[]string{"Ada", "Lovelace", "ada@x.org", "High"},
		[]string{"", "Babbage", "", ""},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}

	if sum.Added != 1 || sum.Updated != 0 || sum.Skipped != 1 || sum.TotalRows != 2 {
		t.Errorf("summary = %+v, want added:1 updated:0 skipped:1 total:2", sum)
	}
	if len(sum.SkippedNames) != 1 || sum.SkippedNames[0] != " Babbage" {
		t.Errorf("skipped names = %q, want [\" Babbage\"]", sum.SkippedNames)
	}

	if len(tx.guests) != 1 {
		t.Fatalf("expected 1 guest created, got %d", len(tx.guests))
	}
	g := tx.guests[0]
	if g.FirstName != "Ada" || g.LastName != "Lovelace" || g.Email != "ada@x.org" {
		t.Errorf("created guest = %+v", g)
	}
	if g.UserID != userID {
		t.Errorf("guest owner = %d, want %d", g.UserID, userID)
	}
	// "Rating" resolves to the donor capacity field.
	if g.DonorCapacity != "High" {
		t.Errorf("donor capacity = %q, want High", g.DonorCapacity)
	}
}

func TestImportGuests_CapacityFromMappedColumn(t *testing.T) {
	tx := &fakeTx{}
	table := mkTable(
		[]string{"First Name", "Last Name", "Giving Level"},
		[]string{"Ada", "Lovelace", "High"},
	)

	if _, err := ImportGuests(context.Background(), tx, table, userID); err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if tx.guests[0].DonorCapacity != "High" {
		t.Errorf("donor capacity = %q, want High", tx.guests[0].DonorCapacity)
	}
}

func TestImportGuests_Idempotent(t *testing.T) {
	tx := &fakeTx{}
	table := mkTable(
		[]string{"First Name", "Last Name", "Email", "Organization"},
		[]string{"Ada", "Lovelace", "ada@x.org", "Analytical Engines"},
		[]string{"Grace", "Hopper", "grace@x.org", "Navy"},
	)

	first, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if first.Added != 2 {
		t.Fatalf("first run added = %d, want 2", first.Added)
	}
	// No capacity column in the file, so the sentinel default applies.
	if tx.guests[0].DonorCapacity != "TBD" {
		t.Errorf("donor capacity = %q, want TBD", tx.guests[0].DonorCapacity)
	}

	second, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if second.Added != 0 || second.Updated != 0 || second.Skipped != 2 {
		t.Errorf("second run = %+v, want added:0 updated:0 skipped:2", second)
	}
	if len(tx.guests) != 2 {
		t.Errorf("expected no duplicates, got %d guests", len(tx.guests))
	}
}

func TestImportGuests_DisjunctiveEmailMatch(t *testing.T) {
	// A row whose name differs but whose email matches must update, not
	// duplicate, the existing guest.
	tx := &fakeTx{}
	tx.guests = append(tx.guests, &store.Guest{
		ID: 1, UserID: userID, FirstName: "Augusta", LastName: "King",
		Email: "ada@x.org", DonorCapacity: "TBD",
	})

	table := mkTable(
		[]string{"First Name", "Last Name", "Email", "Organization"},
		[]string{"Ada", "Lovelace", "ADA@X.ORG", "Analytical Engines"},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if sum.Added != 0 || sum.Updated != 1 {
		t.Errorf("summary = %+v, want added:0 updated:1", sum)
	}
	if len(tx.guests) != 1 {
		t.Fatalf("expected no duplicate guest, got %d", len(tx.guests))
	}
	if tx.guests[0].Organization != "Analytical Engines" {
		t.Errorf("organization not backfilled: %q", tx.guests[0].Organization)
	}
}

func TestImportGuests_NeverOverwritesPopulatedFields(t *testing.T) {
	tx := &fakeTx{}
	tx.guests = append(tx.guests, &store.Guest{
		ID: 1, UserID: userID, FirstName: "Ada", LastName: "Lovelace",
		Organization: "Analytical Engines", DonorCapacity: "TBD",
	})

	table := mkTable(
		[]string{"First Name", "Last Name", "Organization", "Phone"},
		[]string{"Ada", "Lovelace", "Babbage & Co", "555-0100"},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}

	if tx.guests[0].Organization != "Analytical Engines" {
		t.Errorf("populated organization overwritten: %q", tx.guests[0].Organization)
	}
	if tx.guests[0].Phone != "555-0100" {
		t.Errorf("empty phone not backfilled: %q", tx.guests[0].Phone)
	}
	if sum.Updated != 1 {
		t.Errorf("updated = %d, want 1 (phone backfill)", sum.Updated)
	}
}

func TestImportGuests_CapacityAlwaysOverwrites(t *testing.T) {
	tx := &fakeTx{}
	tx.guests = append(tx.guests, &store.Guest{
		ID: 1, UserID: userID, FirstName: "Ada", LastName: "Lovelace",
		DonorCapacity: "Low",
	})

	table := mkTable(
		[]string{"First Name", "Last Name", "Donor Capacity"},
		[]string{"Ada", "Lovelace", "Very High"},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if tx.guests[0].DonorCapacity != "Very High" {
		t.Errorf("donor capacity = %q, want Very High", tx.guests[0].DonorCapacity)
	}
	if sum.Updated != 1 {
		t.Errorf("updated = %d, want 1", sum.Updated)
	}
}

func TestImportGuests_BlankCapacityDoesNotClobber(t *testing.T) {
	// A row with an empty capacity cell supplies nothing; the stored value
	// must survive.
	tx := &fakeTx{}
	tx.guests = append(tx.guests, &store.Guest{
		ID: 1, UserID: userID, FirstName: "Ada", LastName: "Lovelace",
		DonorCapacity: "High",
	})

	table := mkTable(
		[]string{"First Name", "Last Name", "Donor Capacity"},
		[]string{"Ada", "Lovelace", ""},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if tx.guests[0].DonorCapacity != "High" {
		t.Errorf("donor capacity = %q, want High", tx.guests[0].DonorCapacity)
	}
	if sum.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (no new information)", sum.Skipped)
	}
}

func TestImportGuests_ExternalIDCoercion(t *testing.T) {
	tx := &fakeTx{}
	table := mkTable(
		[]string{"First Name", "Last Name", "University ID"},
		[]string{"Ada", "Lovelace", "1234.0"},
	)

	if _, err := ImportGuests(context.Background(), tx, table, userID); err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if tx.guests[0].ExternalID != "1234" {
		t.Errorf("external id = %q, want 1234", tx.guests[0].ExternalID)
	}
}

func TestImportGuests_NanPlaceholderSkipped(t *testing.T) {
	tx := &fakeTx{}
	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"nan", "Lovelace"},
		[]string{"Ada", "NaN"},
		[]string{"Ada", "Lovelace"},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if sum.Added != 1 || sum.Skipped != 2 {
		t.Errorf("summary = %+v, want added:1 skipped:2", sum)
	}
	if len(sum.SkippedNames) != 2 {
		t.Errorf("skipped names = %v", sum.SkippedNames)
	}
}

func TestImportGuests_MissingNameColumns(t *testing.T) {
	tx := &fakeTx{}
	table := mkTable(
		[]string{"Email", "Rating"},
		[]string{"ada@x.org", "High"},
	)

	_, err := ImportGuests(context.Background(), tx, table, userID)
	var missing *tabular.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(tx.guests) != 0 {
		t.Error("no guests should be created when mapping fails")
	}
}

func TestImportGuests_AbortsOnStorageFailure(t *testing.T) {
	// The engine must stop on the first unexpected error so the caller's
	// transaction rollback discards every previous row.
	tx := &fakeTx{failAfterWrites: 2}
	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"Ada", "Lovelace"},
		[]string{"Grace", "Hopper"},
		[]string{"Alan", "Turing"},
		[]string{"Edsger", "Dijkstra"},
	)

	_, err := ImportGuests(context.Background(), tx, table, userID)
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("expected *ImportError, got %T", err)
	}
	if impErr.Row != 3 {
		t.Errorf("failing row = %d, want 3", impErr.Row)
	}
	// Only the writes before the failure happened; a real run is wrapped in
	// a transaction, so even those are rolled back.
	if tx.writes != 3 {
		t.Errorf("writes = %d, want 3 (third write fails, no further rows)", tx.writes)
	}
}

func TestImportGuests_OtherUsersGuestsInvisible(t *testing.T) {
	tx := &fakeTx{}
	tx.guests = append(tx.guests, &store.Guest{
		ID: 1, UserID: 99, FirstName: "Ada", LastName: "Lovelace",
	})

	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"Ada", "Lovelace"},
	)

	sum, err := ImportGuests(context.Background(), tx, table, userID)
	if err != nil {
		t.Fatalf("ImportGuests() error: %v", err)
	}
	if sum.Added != 1 {
		t.Errorf("added = %d, want 1 (other user's guest must not match)", sum.Added)
	}
}

func TestImportAttendees_Basic(t *testing.T) {
	tx := &fakeTx{}
	tx.guests = append(tx.guests,
		&store.Guest{ID: 1, UserID: userID, FirstName: "Ada", LastName: "Lovelace"},
		&store.Guest{ID: 2, UserID: userID, FirstName: "Grace", LastName: "Hopper"},
	)
	tx.attendance = append(tx.attendance, &store.Attendance{GuestID: 2, EventID: 10})

	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"ada", "LOVELACE"},
		[]string{"Grace", "Hopper"},
		[]string{"Charles", "Babbage"},
		[]string{"", "Turing"},
	)

	sum, err := ImportAttendees(context.Background(), tx, table, 10)
	if err != nil {
		t.Fatalf("ImportAttendees() error: %v", err)
	}

	if sum.Added != 1 {
		t.Errorf("added = %d, want 1", sum.Added)
	}
	if sum.Existing != 1 {
		t.Errorf("existing = %d, want 1", sum.Existing)
	}
	if sum.NotFound != 1 || len(sum.NotFoundNames) != 1 || sum.NotFoundNames[0] != "Charles Babbage" {
		t.Errorf("not found = %d %v", sum.NotFound, sum.NotFoundNames)
	}
	if len(tx.attendance) != 2 {
		t.Errorf("expected 2 attendance rows, got %d", len(tx.attendance))
	}
}

func TestImportAttendees_NotUserScoped(t *testing.T) {
	// Attendee matching crosses user boundaries: a guest owned by any user
	// matches by name. Documented current behavior.
	tx := &fakeTx{}
	tx.guests = append(tx.guests,
		&store.Guest{ID: 1, UserID: 1, FirstName: "Ada", LastName: "Lovelace"},
		&store.Guest{ID: 2, UserID: 2, FirstName: "Ada", LastName: "Lovelace"},
	)

	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"Ada", "Lovelace"},
	)

	sum, err := ImportAttendees(context.Background(), tx, table, 10)
	if err != nil {
		t.Fatalf("ImportAttendees() error: %v", err)
	}
	if sum.Added != 1 {
		t.Fatalf("added = %d, want 1", sum.Added)
	}
	if tx.attendance[0].GuestID != 1 {
		t.Errorf("attached guest %d, want first match (1)", tx.attendance[0].GuestID)
	}
}

func TestImportAttendees_AbortsOnStorageFailure(t *testing.T) {
	tx := &fakeTx{failAfterWrites: 1}
	tx.guests = append(tx.guests,
		&store.Guest{ID: 1, UserID: userID, FirstName: "Ada", LastName: "Lovelace"},
		&store.Guest{ID: 2, UserID: userID, FirstName: "Grace", LastName: "Hopper"},
	)

	table := mkTable(
		[]string{"First Name", "Last Name"},
		[]string{"Ada", "Lovelace"},
		[]string{"Grace", "Hopper"},
	)

	_, err := ImportAttendees(context.Background(), tx, table, 10)
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	var impErr *ImportError
	if !errors.As(err, &impErr) || impErr.Row != 2 {
		t.Fatalf("expected ImportError at row 2, got %v", err)
	}
}
