package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "simple title",
			title:    "Software Engineer at Acme",
			expected: "software-engineer-at-acme",
		},
		{
			name:     "diacritics folded",
			title:    "Café München GmbH",
			expected: "cafe-munchen-gmbh",
		},
		{
			name:     "punctuation stripped",
			title:    "Certification: AWS Solutions Architect (Associate)",
			expected: "certification-aws-solutions-architect-associate",
		},
		{
			name:     "repeated separators collapse",
			title:    "Senior  --  Engineer",
			expected: "senior-engineer",
		},
		{
			name:     "leading and trailing junk",
			title:    "  ...Data!  ",
			expected: "data",
		},
		{
			name:     "empty title",
			title:    "",
			expected: "untitled",
		},
		{
			name:     "whitespace only",
			title:    "   \t ",
			expected: "untitled",
		},
		{
			name:     "symbols only",
			title:    "???!!!",
			expected: "untitled",
		},
		{
			name:     "digits preserved",
			title:    "Web 2.0 Developer",
			expected: "web-2-0-developer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Make(tt.title)
			if got != tt.expected {
				t.Errorf("Make(%q) = %q, expected %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestMakeOutputAlphabet(t *testing.T) {
	got := Make("Crème brûlée & Señor Müller—côté jardin")
	for _, r := range got {
		valid := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
		if !valid {
			t.Fatalf("Make produced invalid rune %q in %q", r, got)
		}
	}
	if got[0] == '-' || got[len(got)-1] == '-' {
		t.Errorf("slug has leading or trailing hyphen: %q", got)
	}
}

func TestRegistryDisambiguation(t *testing.T) {
	r := NewRegistry()

	first := r.Unique("Engineer at Acme")
	second := r.Unique("Engineer at Acme")
	third := r.Unique("Engineer at Acme")

	if first != "engineer-at-acme" {
		t.Errorf("first slug = %q", first)
	}
	if second != "engineer-at-acme-2" {
		t.Errorf("second slug = %q, expected -2 suffix", second)
	}
	if third != "engineer-at-acme-3" {
		t.Errorf("third slug = %q, expected -3 suffix", third)
	}
}

func TestRegistrySuffixCollision(t *testing.T) {
	r := NewRegistry()

	// A title that already slugifies to the -2 form must not clash
	// with the disambiguated variant.
	r.Unique("Engineer")
	taken := r.Unique("Engineer 2") // engineer-2
	disambiguated := r.Unique("Engineer")

	if taken == disambiguated {
		t.Fatalf("registry produced duplicate slug %q", taken)
	}
	if disambiguated != "engineer-3" {
		t.Errorf("disambiguated slug = %q, expected engineer-3", disambiguated)
	}
}

func TestRegistryEmptyTitles(t *testing.T) {
	r := NewRegistry()

	if got := r.Unique(""); got != "untitled" {
		t.Errorf("first empty title = %q", got)
	}
	if got := r.Unique("  "); got != "untitled-2" {
		t.Errorf("second empty title = %q, expected untitled-2", got)
	}
}
