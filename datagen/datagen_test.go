package datagen

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/spf13/afero"
)

func TestGenerate(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Generate(fs, "/data.txt", 1000, 10, 42); err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	b, err := afero.ReadFile(fs, "/data.txt")
	if err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if len(lines) != 1000 {
		t.Fatalf("expected 1000 lines but got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) < 1 || len(line) >= 10 {
			t.Errorf("line %d has length %d, outside [1, 10)", i, len(line))
		}
		for _, c := range line {
			if !strings.ContainsRune(alphabet, c) {
				t.Errorf("line %d contains character %q outside the alphabet", i, c)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := Generate(fs, "/a.txt", 100, 8, 7); err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	if err := Generate(fs, "/b.txt", 100, 8, 7); err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	a, err := afero.ReadFile(fs, "/a.txt")
	if err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	b, err := afero.ReadFile(fs, "/b.txt")
	if err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	if diff := deep.Equal(string(a), string(b)); diff != nil {
		t.Errorf("%+v", diff)
	}
}

func TestGenerateInvalidArgs(t *testing.T) {
	tests := []struct {
		name     string
		numLines int
		maxLen   int
	}{
		{
			name:     "negative line count",
			numLines: -1,
			maxLen:   10,
		},
		{
			name:     "max length below 2",
			numLines: 10,
			maxLen:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := Generate(fs, "/data.txt", tt.numLines, tt.maxLen, 1); err == nil {
				t.Fatalf("supposed to fail but succeeded")
			}
		})
	}
}
