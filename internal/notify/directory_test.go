package notify

import (
	"reflect"
	"testing"

	"github.com/caretrackhq/backend/internal/staff"
)

const (
	uidJane = "uid_jane_0123456789abcdef"
	uidMark = "uid_mark_0123456789abcdef"
	uidRita = "uid_rita_0123456789abcdef"
)

func testProfiles() []staff.Profile {
	return []staff.Profile{
		{UID: uidJane, DisplayName: "Dr. Jane Doe", Email: "jane@clinic.test", FCMToken: "TOK_JANE", Active: true},
		{UID: uidMark, DisplayName: "Mark Spencer", Email: "mark@clinic.test", FCMToken: "TOK_MARK", Active: true},
		{UID: uidRita, DisplayName: "Rita Ng", Email: "rita@clinic.test", Active: true},
	}
}

func TestLooksLikeUID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{uidJane, true},
		{"short_id", false},
		{"Dr. Jane Doe", false},
		{"jane@clinic.test", false},
		{"abcdefghijklmnopqrst", true},
		{"abcdefghijklmnopqrs", false},
		{"abcdefghij klmnopqrst", false},
	}
	for _, tc := range cases {
		if got := LooksLikeUID(tc.in); got != tc.want {
			t.Errorf("LooksLikeUID(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestResolveMixedReferences(t *testing.T) {
	dir := NewDirectory(testProfiles())

	res := dir.Resolve([]string{uidJane, "  MARK   SPENCER ", "rita@clinic.test"}, "")
	if res.ResolvedCount != 3 {
		t.Fatalf("resolved = %d, want 3", res.ResolvedCount)
	}
	if want := []string{"TOK_JANE", "TOK_MARK"}; !reflect.DeepEqual(res.Tokens, want) {
		t.Fatalf("tokens = %v, want %v (rita has no token)", res.Tokens, want)
	}
}

func TestResolveDeduplicatesAliases(t *testing.T) {
	dir := NewDirectory(testProfiles())

	// uid, name and email of the same person count once.
	res := dir.Resolve([]string{uidJane, "Dr. Jane Doe", "jane@clinic.test"}, "")
	if res.ResolvedCount != 1 || len(res.Tokens) != 1 {
		t.Fatalf("resolved = %d tokens = %d, want 1/1", res.ResolvedCount, len(res.Tokens))
	}
}

func TestResolveOrderIndependent(t *testing.T) {
	dir := NewDirectory(testProfiles())

	a := dir.Resolve([]string{uidJane, "Mark Spencer"}, "")
	b := dir.Resolve([]string{"Mark Spencer", uidJane}, "")
	if a.ResolvedCount != b.ResolvedCount || len(a.Tokens) != len(b.Tokens) {
		t.Fatalf("reordering changed the result: %+v vs %+v", a, b)
	}
}

func TestResolveExcludesActorByAlias(t *testing.T) {
	dir := NewDirectory(testProfiles())

	// The actor appears under a display name, not a uid; exclusion still
	// applies after resolution.
	res := dir.Resolve([]string{"Dr. Jane Doe", "Mark Spencer"}, uidJane)
	if res.ResolvedCount != 1 {
		t.Fatalf("resolved = %d, want 1", res.ResolvedCount)
	}
	if !reflect.DeepEqual(res.Tokens, []string{"TOK_MARK"}) {
		t.Fatalf("tokens = %v, want only TOK_MARK", res.Tokens)
	}
}

func TestResolveDropsUnknownSilently(t *testing.T) {
	dir := NewDirectory(testProfiles())

	res := dir.Resolve([]string{"Nobody Known", "", "  ", "Mark Spencer"}, "")
	if res.ResolvedCount != 1 || len(res.Tokens) != 1 {
		t.Fatalf("resolved = %d tokens = %d, want 1/1", res.ResolvedCount, len(res.Tokens))
	}
}

func TestAllStaffTokensSkipsInactiveAndActor(t *testing.T) {
	profiles := testProfiles()
	profiles = append(profiles, staff.Profile{UID: "uid_gone_0123456789abcdef", DisplayName: "Left Already", FCMToken: "TOK_GONE", Active: false})
	dir := NewDirectory(profiles)

	res := dir.AllStaffTokens(uidMark)
	if res.ResolvedCount != 2 {
		t.Fatalf("resolved = %d, want 2 (jane and rita)", res.ResolvedCount)
	}
	if !reflect.DeepEqual(res.Tokens, []string{"TOK_JANE"}) {
		t.Fatalf("tokens = %v, want only TOK_JANE", res.Tokens)
	}
}
