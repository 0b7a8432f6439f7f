package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mfeller-dev/guestlist/internal/store"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Spring Gala", "Bio Sheet - Spring Gala.pdf"},
		{"Q3: Donor/Alumni Mixer", "Bio Sheet - Q3 DonorAlumni Mixer.pdf"},
		{"  ", "Bio Sheet - Event.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCapacityLine(t *testing.T) {
	tests := []struct {
		capacity, manager, want string
	}{
		{"High", "Jo March", "High - Jo March"},
		{"High", "", "High"},
		{"", "Jo March", "Jo March"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := capacityLine(tt.capacity, tt.manager); got != tt.want {
			t.Errorf("capacityLine(%q, %q) = %q, want %q", tt.capacity, tt.manager, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	g := &store.Guest{Prefix: "Dr.", FirstName: "Ada", Nickname: "The Countess", LastName: "Lovelace"}
	if got := displayName(g); got != `Dr. Ada "The Countess" Lovelace` {
		t.Errorf("displayName() = %q", got)
	}

	plain := &store.Guest{FirstName: "Ada", LastName: "Lovelace"}
	if got := displayName(plain); got != "Ada Lovelace" {
		t.Errorf("displayName() = %q", got)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBioSheetRendersPDF(t *testing.T) {
	dir := t.TempDir()

	// One real photo on disk, one dangling reference.
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ada.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(func(name string) string {
		return filepath.Join(dir, filepath.Base(name))
	}, testLogger())

	event := &store.Event{
		Name:     "Spring Gala",
		StartsAt: time.Date(2026, 4, 18, 18, 30, 0, 0, time.UTC),
		Location: "Great Hall",
	}
	attendees := []store.Attendee{
		{Guest: store.Guest{
			FirstName: "Ada", LastName: "Lovelace",
			Organization: "Analytical Engines", Title: "Chair",
			ExternalID: "1234", DonorCapacity: "High",
			RelationshipManager: "Jo March",
			Bio:                 "Pioneer of computing.",
			PhotoFilename:       "ada.png",
		}},
		{Guest: store.Guest{
			FirstName: "Grace", LastName: "Hopper",
			DonorCapacity: "TBD",
			PhotoFilename: "missing.png",
		}},
	}

	out, err := g.BioSheet(event, attendees)
	if err != nil {
		t.Fatalf("BioSheet() error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestBioSheetEmptyAttendeeList(t *testing.T) {
	g := NewGenerator(nil, testLogger())
	out, err := g.BioSheet(&store.Event{Name: "Quiet Night"}, nil)
	if err != nil {
		t.Fatalf("BioSheet() error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("output does not look like a PDF")
	}
}
