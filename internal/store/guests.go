package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const guestColumns = `id, user_id, prefix, first_name, middle_name, last_name, nickname,
	descriptor, email, phone, organization, title, external_id, relationship_manager,
	donor_capacity, bio, notes, photo_filename, created_at, updated_at`

func scanGuest(row pgx.Row) (*Guest, error) {
	var g Guest
	err := row.Scan(
		&g.ID, &g.UserID, &g.Prefix, &g.FirstName, &g.MiddleName, &g.LastName,
		&g.Nickname, &g.Descriptor, &g.Email, &g.Phone, &g.Organization, &g.Title,
		&g.ExternalID, &g.RelationshipManager, &g.DonorCapacity, &g.Bio, &g.Notes,
		&g.PhotoFilename, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan guest: %w", err)
	}
	return &g, nil
}

// CreateGuest inserts g and fills in its generated fields.
func (q *Queries) CreateGuest(ctx context.Context, g *Guest) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO guests (user_id, prefix, first_name, middle_name, last_name,
			nickname, descriptor, email, phone, organization, title, external_id,
			relationship_manager, donor_capacity, bio, notes, photo_filename)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at`,
		g.UserID, g.Prefix, g.FirstName, g.MiddleName, g.LastName,
		g.Nickname, g.Descriptor, g.Email, g.Phone, g.Organization, g.Title,
		g.ExternalID, g.RelationshipManager, g.DonorCapacity, g.Bio, g.Notes,
		g.PhotoFilename,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create guest: %w", err)
	}
	return nil
}

// UpdateGuest writes all mutable fields of g back to the database.
func (q *Queries) UpdateGuest(ctx context.Context, g *Guest) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE guests SET prefix=$1, first_name=$2, middle_name=$3, last_name=$4,
			nickname=$5, descriptor=$6, email=$7, phone=$8, organization=$9,
			title=$10, external_id=$11, relationship_manager=$12, donor_capacity=$13,
			bio=$14, notes=$15, photo_filename=$16, updated_at=now()
		WHERE id=$17`,
		g.Prefix, g.FirstName, g.MiddleName, g.LastName, g.Nickname, g.Descriptor,
		g.Email, g.Phone, g.Organization, g.Title, g.ExternalID,
		g.RelationshipManager, g.DonorCapacity, g.Bio, g.Notes, g.PhotoFilename,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGuest fetches one guest owned by userID.
func (q *Queries) GetGuest(ctx context.Context, id, userID int64) (*Guest, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id=$1 AND user_id=$2`, id, userID)
	return scanGuest(row)
}

// DeleteGuest removes a guest owned by userID. Attendance rows cascade.
func (q *Queries) DeleteGuest(ctx context.Context, id, userID int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM guests WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindGuestByNameOrEmail looks up an existing guest for userID where the name
// pair matches case-insensitively, or the email matches case-insensitively
// when both sides are non-empty. Either condition alone identifies the guest.
// Returns ErrNotFound when no guest matches.
func (q *Queries) FindGuestByNameOrEmail(ctx context.Context, userID int64, firstName, lastName, email string) (*Guest, error) {
	if email != "" {
		row := q.db.QueryRow(ctx, `
			SELECT `+guestColumns+` FROM guests
			WHERE user_id=$1
			  AND ((lower(first_name)=lower($2) AND lower(last_name)=lower($3))
			    OR (email <> '' AND lower(email)=lower($4)))
			ORDER BY id LIMIT 1`,
			userID, firstName, lastName, email)
		return scanGuest(row)
	}
	row := q.db.QueryRow(ctx, `
		SELECT `+guestColumns+` FROM guests
		WHERE user_id=$1 AND lower(first_name)=lower($2) AND lower(last_name)=lower($3)
		ORDER BY id LIMIT 1`,
		userID, firstName, lastName)
	return scanGuest(row)
}

// FindGuestByName looks up a guest by case-insensitive name pair across all
// users. Attendee import deliberately matches this broadly.
func (q *Queries) FindGuestByName(ctx context.Context, firstName, lastName string) (*Guest, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+guestColumns+` FROM guests
		WHERE lower(first_name)=lower($1) AND lower(last_name)=lower($2)
		ORDER BY id LIMIT 1`,
		firstName, lastName)
	return scanGuest(row)
}

// guestSortColumns is the allowlist for ListGuests ordering.
var guestSortColumns = map[string]string{
	"first_name":   "lower(first_name)",
	"last_name":    "lower(last_name)",
	"email":        "lower(email)",
	"organization": "lower(organization)",
	"created_at":   "created_at",
}

// GuestListParams controls ListGuests filtering, ordering, and paging.
type GuestListParams struct {
	UserID  int64
	Search  string // matches name, email, or organization
	SortBy  string // one of guestSortColumns; default last_name
	SortDir string // "asc" or "desc"
	Limit   int
	Offset  int
}

// ListGuests returns a page of the user's guests plus the total match count.
func (q *Queries) ListGuests(ctx context.Context, p GuestListParams) ([]Guest, int, error) {
	where := `WHERE user_id=$1`
	args := []interface{}{p.UserID}

	if p.Search != "" {
		where += ` AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2 OR organization ILIKE $2)`
		args = append(args, "%"+p.Search+"%")
	}

	var total int
	if err := q.db.QueryRow(ctx, `SELECT count(*) FROM guests `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count guests: %w", err)
	}

	orderCol, ok := guestSortColumns[p.SortBy]
	if !ok {
		orderCol = guestSortColumns["last_name"]
	}
	dir := "ASC"
	if strings.EqualFold(p.SortDir, "desc") {
		dir = "DESC"
	}

	limit := p.Limit
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM guests %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		guestColumns, where, orderCol, dir, limit, p.Offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	var guests []Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, 0, err
		}
		guests = append(guests, *g)
	}
	return guests, total, rows.Err()
}
