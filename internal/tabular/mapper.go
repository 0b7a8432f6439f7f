package tabular

import (
	"fmt"
	"strings"
)

// Field is a canonical guest field that import columns are mapped onto.
type Field string

const (
	FieldFirstName           Field = "first_name"
	FieldLastName            Field = "last_name"
	FieldEmail               Field = "email"
	FieldPrefix              Field = "prefix"
	FieldMiddleName          Field = "middle_name"
	FieldNickname            Field = "nickname"
	FieldDescriptor          Field = "descriptor"
	FieldPhone               Field = "phone"
	FieldOrganization        Field = "organization"
	FieldTitle               Field = "title"
	FieldExternalID          Field = "external_id"
	FieldRelationshipManager Field = "relationship_manager"
	FieldDonorCapacity       Field = "donor_capacity"
	FieldBio                 Field = "bio"
	FieldNotes               Field = "notes"
)

// fieldRegistry lists each canonical field with the header substrings that
// identify it, matched case-insensitively. Order matters: when one header
// could satisfy several fields, the earlier registry entry claims it.
var fieldRegistry = []struct {
	Field    Field
	Synonyms []string
}{
	{FieldFirstName, []string{"first name", "firstname", "fname"}},
	{FieldLastName, []string{"last name", "lastname", "lname"}},
	{FieldEmail, []string{"email", "e-mail", "email address"}},
	{FieldPrefix, []string{"prefix", "salutation"}},
	{FieldMiddleName, []string{"middle name", "middlename"}},
	{FieldNickname, []string{"nickname", "nicknames", "other names"}},
	{FieldDescriptor, []string{"descriptor", "suffix"}},
	{FieldPhone, []string{"phone", "phone number", "mobile", "contact number"}},
	{FieldOrganization, []string{"organization", "company", "org"}},
	{FieldTitle, []string{"job title", "position", "role", "title"}},
	{FieldExternalID, []string{"external id", "institutional id", "university id", "record id"}},
	{FieldRelationshipManager, []string{"relationship manager", "prospect manager", "development officer"}},
	{FieldDonorCapacity, []string{"donor capacity", "giving level", "capacity", "rating"}},
	{FieldBio, []string{"bio", "biography", "description"}},
	{FieldNotes, []string{"notes", "additional info", "comments"}},
}

// OptionalFields lists every mapped field other than first/last name, in
// registry order. The reconciliation engines use it to build candidate
// field sets from a row.
func OptionalFields() []Field {
	out := make([]Field, 0, len(fieldRegistry)-2)
	for _, entry := range fieldRegistry {
		if entry.Field == FieldFirstName || entry.Field == FieldLastName {
			continue
		}
		out = append(out, entry.Field)
	}
	return out
}

// MapHeaders maps canonical fields to the actual header that matched: for
// each field in registry order, the first header (in table order) containing
// any of its synonyms as a case-insensitive substring. A header satisfies at
// most one field; fields with no matching header are absent from the result.
func MapHeaders(headers []string) map[Field]string {
	mapping := make(map[Field]string)
	claimed := make(map[string]bool)

	for _, entry := range fieldRegistry {
		for _, h := range headers {
			if claimed[h] {
				continue
			}
			if headerMatches(h, entry.Synonyms) {
				mapping[entry.Field] = h
				claimed[h] = true
				break
			}
		}
	}

	return mapping
}

func headerMatches(header string, synonyms []string) bool {
	lower := strings.ToLower(header)
	for _, syn := range synonyms {
		if strings.Contains(lower, syn) {
			return true
		}
	}
	return false
}

// MissingColumnsError reports that the first/last name columns, which every
// import requires, could not be mapped. Found carries the headers that were
// present so the user can fix them.
type MissingColumnsError struct {
	Found []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required first and last name columns not found; available columns: %s",
		strings.Join(e.Found, ", "))
}

// RequireNames verifies the mapping resolved both name fields, returning a
// MissingColumnsError listing the headers actually found when it did not.
func RequireNames(mapping map[Field]string, headers []string) error {
	if mapping[FieldFirstName] == "" || mapping[FieldLastName] == "" {
		return &MissingColumnsError{Found: headers}
	}
	return nil
}
