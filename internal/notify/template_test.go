package notify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateCapsAtSixtyRunes(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := truncate(long)
	if utf8.RuneCountInString(got) != maxSnippet+1 {
		t.Fatalf("rune count = %d, want %d", utf8.RuneCountInString(got), maxSnippet+1)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("missing ellipsis: %q", got)
	}

	short := "brief note"
	if truncate(short) != short {
		t.Fatalf("short text must pass through unchanged")
	}
}

func TestRenderDiagnosisNote(t *testing.T) {
	title, body, link, ok := Render(Event{
		Type:        EventDiagnosisNote,
		PatientID:   "11111111-1111-1111-1111-111111111111",
		PatientName: "John Smith",
		ActorName:   "Dr. Jane Doe",
		Text:        "Adjusted medication schedule",
	})
	if !ok {
		t.Fatal("render failed")
	}
	if title != "Diagnosis update: John Smith" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(body, "Dr. Jane Doe") || !strings.Contains(body, "Adjusted medication schedule") {
		t.Errorf("body = %q", body)
	}
	if link != "/?page=patient-detail&id=11111111-1111-1111-1111-111111111111" {
		t.Errorf("link = %q", link)
	}
}

func TestRenderFallbackNames(t *testing.T) {
	_, body, _, ok := Render(Event{Type: EventReport, Section: "risk"})
	if !ok {
		t.Fatal("render failed")
	}
	if body != "Staff added a risk report." {
		t.Errorf("body = %q", body)
	}
}

func TestRenderUnknownType(t *testing.T) {
	if _, _, _, ok := Render(Event{Type: "mystery"}); ok {
		t.Fatal("unknown type must not render")
	}
}
