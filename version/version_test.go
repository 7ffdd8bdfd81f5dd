package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"1.2.3", Version{1, 2, 3}},
		{"0.0.1", Version{0, 0, 1}},
		{"10.20.30", Version{10, 20, 30}},
		{"1.2", Version{1, 2, 0}},
		{"1", Version{1, 0, 0}},
		{"1.2.3.4", Version{1, 2, 3}},
		{"0.1.0\n", Version{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "1.x.3", "1..3", "-1.2.3", "1.2.-3"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			var invalidErr *InvalidVersionError
			if !errors.As(err, &invalidErr) {
				t.Errorf("Parse(%q) err = %v, want *InvalidVersionError", input, err)
			}
		})
	}
}

func TestBump(t *testing.T) {
	tests := []struct {
		input string
		kind  string
		want  string
	}{
		{"1.2.3", "patch", "1.2.4"},
		{"1.2.3", "minor", "1.3.0"},
		{"1.2.3", "major", "2.0.0"},
		{"0.1.0", "", "0.1.1"},
		{"0.1.0", "bogus", "0.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.kind, func(t *testing.T) {
			got, err := BumpString(tt.input, tt.kind)
			if err != nil {
				t.Fatalf("BumpString: %v", err)
			}
			if got != tt.want {
				t.Errorf("BumpString(%q, %q) = %q, want %q", tt.input, tt.kind, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3}
	if v.String() != "1.2.3" {
		t.Errorf("String() = %q", v.String())
	}
}

func TestArtifactName(t *testing.T) {
	v := Version{Major: 0, Minor: 1, Patch: 0}
	want := "devops-toolchain-service-0.1.0-a11dfd9"

	got := ArtifactName("devops-toolchain-service", v, "a11dfd9")
	if got != want {
		t.Errorf("ArtifactName = %q, want %q", got, want)
	}

	// Deterministic for identical inputs.
	if again := ArtifactName("devops-toolchain-service", v, "a11dfd9"); again != got {
		t.Errorf("ArtifactName not stable: %q vs %q", got, again)
	}
}
