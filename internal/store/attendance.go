package store

import (
	"context"
	"fmt"
)

// CreateAttendance links a guest to an event.
func (q *Queries) CreateAttendance(ctx context.Context, a *Attendance) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO attendance (guest_id, event_id, attended, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING id, registered_at`,
		a.GuestID, a.EventID, a.Attended, a.Notes,
	).Scan(&a.ID, &a.RegisteredAt)
	if err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// AttendanceExists reports whether the guest is already linked to the event.
func (q *Queries) AttendanceExists(ctx context.Context, guestID, eventID int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendance WHERE guest_id=$1 AND event_id=$2)`,
		guestID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("attendance exists: %w", err)
	}
	return exists, nil
}

// DeleteAttendance removes one attendance link from an event.
func (q *Queries) DeleteAttendance(ctx context.Context, id, eventID int64) error {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM attendance WHERE id=$1 AND event_id=$2`, id, eventID)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAttended updates the attended flag on an attendance link.
func (q *Queries) SetAttended(ctx context.Context, id, eventID int64, attended bool) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE attendance SET attended=$1 WHERE id=$2 AND event_id=$3`,
		attended, id, eventID)
	if err != nil {
		return fmt.Errorf("set attended: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAttendees returns an event's attendance rows joined to their guests,
// ordered by guest last name then first name ascending.
func (q *Queries) ListAttendees(ctx context.Context, eventID int64) ([]Attendee, error) {
	rows, err := q.db.Query(ctx, `
		SELECT a.id, a.guest_id, a.event_id, a.registered_at, a.attended, a.notes,
			g.id, g.user_id, g.prefix, g.first_name, g.middle_name, g.last_name,
			g.nickname, g.descriptor, g.email, g.phone, g.organization, g.title,
			g.external_id, g.relationship_manager, g.donor_capacity, g.bio, g.notes,
			g.photo_filename, g.created_at, g.updated_at
		FROM attendance a
		JOIN guests g ON g.id = a.guest_id
		WHERE a.event_id = $1
		ORDER BY lower(g.last_name), lower(g.first_name)`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []Attendee
	for rows.Next() {
		var at Attendee
		g := &at.Guest
		err := rows.Scan(
			&at.ID, &at.GuestID, &at.EventID, &at.RegisteredAt, &at.Attended, &at.Notes,
			&g.ID, &g.UserID, &g.Prefix, &g.FirstName, &g.MiddleName, &g.LastName,
			&g.Nickname, &g.Descriptor, &g.Email, &g.Phone, &g.Organization, &g.Title,
			&g.ExternalID, &g.RelationshipManager, &g.DonorCapacity, &g.Bio, &g.Notes,
			&g.PhotoFilename, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, at)
	}
	return attendees, rows.Err()
}
