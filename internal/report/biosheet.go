// Package report renders printable documents for events. The bio sheet is a
// PDF briefing with one block per attendee: photo, name, identifiers, and
// biography, for staff working the room.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/mfeller-dev/guestlist/internal/store"
)

// ErrReportGeneration wraps any failure while rendering a report.
var ErrReportGeneration = errors.New("report generation failed")

const (
	pageMargin = 15.0
	photoWidth = 32.0
)

// Generator renders bio sheets. resolvePhoto maps a stored photo filename to
// its on-disk path; a photo.Manager's Path method satisfies it.
type Generator struct {
	resolvePhoto func(name string) string
	log          *slog.Logger
}

// NewGenerator returns a Generator using the given photo path resolver.
func NewGenerator(resolvePhoto func(string) string, log *slog.Logger) *Generator {
	return &Generator{resolvePhoto: resolvePhoto, log: log}
}

// Filename returns the download filename for an event's bio sheet.
func Filename(eventName string) string {
	// Strip characters that break Content-Disposition or filesystems.
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r':
			return -1
		}
		return r
	}, eventName)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		clean = "Event"
	}
	return "Bio Sheet - " + clean + ".pdf"
}

// BioSheet renders the PDF for an event and its attendee list. Attendees
// arrive in the store's ordering (by last name). Missing or unreadable
// photos are logged and skipped; they never fail the report.
func (g *Generator) BioSheet(event *store.Event, attendees []store.Attendee) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	g.writeHeader(pdf, event)

	for i := range attendees {
		g.writeAttendee(pdf, &attendees[i].Guest)
	}
	if len(attendees) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 8, "No attendees registered.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeHeader(pdf *fpdf.Fpdf, event *store.Event) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, event.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if !event.StartsAt.IsZero() {
		when := event.StartsAt.Format("Monday, January 2, 2006 at 3:04 PM")
		pdf.CellFormat(0, 6, when, "", 1, "L", false, 0, "")
	}
	if event.Location != "" {
		pdf.CellFormat(0, 6, event.Location, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.SetDrawColor(160, 160, 160)
	x, y := pdf.GetXY()
	w, _ := pdf.GetPageSize()
	pdf.Line(x, y, w-pageMargin, y)
	pdf.Ln(4)
}

func (g *Generator) writeAttendee(pdf *fpdf.Fpdf, guest *store.Guest) {
	textX := pageMargin
	startY := pdf.GetY()

	if path, ok := g.photoPath(guest); ok {
		opts := fpdf.ImageOptions{ReadDpi: true}
		pdf.ImageOptions(path, pageMargin, startY, photoWidth, 0, false, opts, 0, "")
		textX = pageMargin + photoWidth + 5
	}

	pdf.SetXY(textX, startY)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, displayName(guest), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if guest.Title != "" || guest.Organization != "" {
		pdf.SetX(textX)
		pdf.CellFormat(0, 5, joinNonEmpty(", ", guest.Title, guest.Organization), "", 1, "L", false, 0, "")
	}
	if guest.ExternalID != "" {
		pdf.SetX(textX)
		pdf.CellFormat(0, 5, "ID: "+guest.ExternalID, "", 1, "L", false, 0, "")
	}
	if line := capacityLine(guest.DonorCapacity, guest.RelationshipManager); line != "" {
		pdf.SetX(textX)
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}
	if guest.Bio != "" {
		pdf.Ln(1)
		pdf.SetX(textX)
		lineWidth, _ := pdf.GetPageSize()
		pdf.MultiCell(lineWidth-textX-pageMargin, 5, guest.Bio, "", "L", false)
	}

	// Keep the block at least as tall as the photo so blocks never overlap.
	minY := startY + photoWidth + 4
	if pdf.GetY() < minY {
		pdf.SetY(minY)
	} else {
		pdf.Ln(4)
	}
}

// photoPath resolves and pre-validates the guest's photo. fpdf aborts the
// whole document on a bad image, so anything undecodable is dropped here.
func (g *Generator) photoPath(guest *store.Guest) (string, bool) {
	if guest.PhotoFilename == "" || g.resolvePhoto == nil {
		return "", false
	}
	path := g.resolvePhoto(guest.PhotoFilename)
	f, err := os.Open(path)
	if err != nil {
		g.log.Warn("bio sheet photo missing", "guest_id", guest.ID, "file", guest.PhotoFilename)
		return "", false
	}
	defer f.Close()
	if _, _, err := image.Decode(f); err != nil {
		g.log.Warn("bio sheet photo unreadable", "guest_id", guest.ID, "file", guest.PhotoFilename, "error", err)
		return "", false
	}
	return path, true
}

// displayName is the bold heading for one attendee: prefix, first, nickname
// in quotes, last.
func displayName(guest *store.Guest) string {
	parts := []string{guest.Prefix, guest.FirstName}
	if guest.Nickname != "" {
		parts = append(parts, `"`+guest.Nickname+`"`)
	}
	parts = append(parts, guest.LastName)
	return joinNonEmpty(" ", parts...)
}

// capacityLine renders "capacity - manager"; the dash appears only when both
// halves are present.
func capacityLine(capacity, manager string) string {
	switch {
	case capacity != "" && manager != "":
		return capacity + " - " + manager
	case capacity != "":
		return capacity
	default:
		return manager
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
