package application

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestGuestIssuer_Issue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("mints a guest identity", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		issuer := NewGuestIssuer(people, sequentialIDs("guest"), sequentialIDs("tok"), func() time.Time { return now }, "guests.test", nil)

		person, err := issuer.Issue(context.Background(), "  Jonas  ")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		if person.DisplayName != "Jonas" {
			t.Fatalf("expected trimmed name, got %q", person.DisplayName)
		}
		if !person.Guest {
			t.Fatal("expected a guest identity")
		}
		if person.CanCreateEvents {
			t.Fatal("guests must not create events")
		}
		if !strings.HasPrefix(person.Email, "guest-") || !strings.HasSuffix(person.Email, "@guests.test") {
			t.Fatalf("unexpected synthetic email %q", person.Email)
		}
	})

	t.Run("issues a fresh identity every time", func(t *testing.T) {
		t.Parallel()

		people := newPersonStoreStub()
		issuer := NewGuestIssuer(people, sequentialIDs("guest"), sequentialIDs("tok"), func() time.Time { return now }, "guests.test", nil)

		first, err := issuer.Issue(context.Background(), "Jonas")
		if err != nil {
			t.Fatalf("first Issue failed: %v", err)
		}
		second, err := issuer.Issue(context.Background(), "Jonas")
		if err != nil {
			t.Fatalf("second Issue failed: %v", err)
		}
		if first.ID == second.ID || first.Email == second.Email {
			t.Fatalf("identities must be distinct: %+v vs %+v", first, second)
		}
		if people.guestCount() != 2 {
			t.Fatalf("expected 2 guests minted, got %d", people.guestCount())
		}
	})
}

func TestNormalizeDisplayName(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("å", MaxDisplayNameLength+10)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims whitespace", in: "  Jonas  ", want: "Jonas"},
		{name: "falls back when empty", in: "   ", want: DefaultGuestName},
		{name: "keeps short names", in: "Åse", want: "Åse"},
		{name: "truncates by runes", in: long, want: strings.Repeat("å", MaxDisplayNameLength)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeDisplayName(tc.in); got != tc.want {
				t.Fatalf("NormalizeDisplayName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
