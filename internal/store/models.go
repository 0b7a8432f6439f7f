package store

import "time"

// User is an account that owns a guest directory.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Guest is a contact record owned by one user. Optional text fields use the
// empty string for "unset"; DonorCapacity falls back to the "TBD" sentinel.
type Guest struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Prefix              string    `json:"prefix,omitempty"`
	FirstName           string    `json:"first_name"`
	MiddleName          string    `json:"middle_name,omitempty"`
	LastName            string    `json:"last_name"`
	Nickname            string    `json:"nickname,omitempty"`
	Descriptor          string    `json:"descriptor,omitempty"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Organization        string    `json:"organization,omitempty"`
	Title               string    `json:"title,omitempty"`
	ExternalID          string    `json:"external_id,omitempty"`
	RelationshipManager string    `json:"relationship_manager,omitempty"`
	DonorCapacity       string    `json:"donor_capacity"`
	Bio                 string    `json:"bio,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	PhotoFilename       string    `json:"photo_filename,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FullName returns "First Last" for display.
func (g *Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}

// Event is an organized outreach event. Events are global, not user-scoped.
type Event struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	ExternalRef string    `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Attendance links one guest to one event. The (guest, event) pair is unique.
type Attendance struct {
	ID           int64     `json:"id"`
	GuestID      int64     `json:"guest_id"`
	EventID      int64     `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
	Attended     bool      `json:"attended"`
	Notes        string    `json:"notes,omitempty"`
}

// Attendee is an attendance row joined to its guest, as listed for an event.
type Attendee struct {
	Attendance
	Guest Guest `json:"guest"`
}
