package invite

import "testing"

func TestEncode(t *testing.T) {
	t.Parallel()

	t.Run("builds a link with the name in the query", func(t *testing.T) {
		t.Parallel()

		link, err := Encode("https://events.example.com", "evt-1", "Jonas Gripsrud")
		if err != nil {
			t.Fatalf("Encode returned error: %v", err)
		}
		want := "https://events.example.com/events/evt-1?invite=Jonas+Gripsrud"
		if link != want {
			t.Fatalf("Encode returned %q, want %q", link, want)
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		link, err := Encode("https://events.example.com", "evt-1", "  Ada  ")
		if err != nil {
			t.Fatalf("Encode returned error: %v", err)
		}
		name, err := Decode(link)
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if name != "Ada" {
			t.Fatalf("Decode returned %q, want %q", name, "Ada")
		}
	})

	t.Run("preserves a base path", func(t *testing.T) {
		t.Parallel()

		link, err := Encode("https://example.com/app", "evt-9", "Ada")
		if err != nil {
			t.Fatalf("Encode returned error: %v", err)
		}
		want := "https://example.com/app/events/evt-9?invite=Ada"
		if link != want {
			t.Fatalf("Encode returned %q, want %q", link, want)
		}
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := Encode("https://events.example.com", "evt-1", "   "); err == nil {
			t.Fatal("Encode accepted an empty name")
		}
	})

	t.Run("rejects a relative base url", func(t *testing.T) {
		t.Parallel()

		if _, err := Encode("/events", "evt-1", "Ada"); err == nil {
			t.Fatal("Encode accepted a relative base url")
		}
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("round trips names with spaces and non-ascii characters", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"Jonas Gripsrud", "Åse Nordmann", "O'Brien & co"} {
			link, err := Encode("https://events.example.com", "evt-1", name)
			if err != nil {
				t.Fatalf("Encode(%q) returned error: %v", name, err)
			}
			got, err := Decode(link)
			if err != nil {
				t.Fatalf("Decode(%q) returned error: %v", link, err)
			}
			if got != name {
				t.Fatalf("Decode returned %q, want %q", got, name)
			}
		}
	})

	t.Run("returns empty for a link without the parameter", func(t *testing.T) {
		t.Parallel()

		name, err := Decode("https://events.example.com/events/evt-1")
		if err != nil {
			t.Fatalf("Decode returned error: %v", err)
		}
		if name != "" {
			t.Fatalf("Decode returned %q, want empty", name)
		}
	})
}

func TestEncodeBulk(t *testing.T) {
	t.Parallel()

	t.Run("skips blank lines and preserves order", func(t *testing.T) {
		t.Parallel()

		block := "Ada\n\n  \nGrace\nJonas Gripsrud\n"
		links, err := EncodeBulk("https://events.example.com", "evt-1", block)
		if err != nil {
			t.Fatalf("EncodeBulk returned error: %v", err)
		}
		if len(links) != 3 {
			t.Fatalf("EncodeBulk returned %d links, want 3", len(links))
		}
		wantNames := []string{"Ada", "Grace", "Jonas Gripsrud"}
		for i, link := range links {
			if link.Name != wantNames[i] {
				t.Fatalf("link %d carries name %q, want %q", i, link.Name, wantNames[i])
			}
			decoded, err := Decode(link.URL)
			if err != nil {
				t.Fatalf("Decode(%q) returned error: %v", link.URL, err)
			}
			if decoded != link.Name {
				t.Fatalf("link %d decodes to %q, want %q", i, decoded, link.Name)
			}
		}
	})

	t.Run("returns nothing for an all-blank block", func(t *testing.T) {
		t.Parallel()

		links, err := EncodeBulk("https://events.example.com", "evt-1", "\n \n")
		if err != nil {
			t.Fatalf("EncodeBulk returned error: %v", err)
		}
		if len(links) != 0 {
			t.Fatalf("EncodeBulk returned %d links, want 0", len(links))
		}
	})
}
