package application

import (
	"strings"
	"testing"
)

func TestNewJoinCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code := NewJoinCode()
		if len(code) != 1+joinCodeLength {
			t.Fatalf("expected length %d, got %q", 1+joinCodeLength, code)
		}
		if code[0] != 'M' {
			t.Fatalf("expected M prefix, got %q", code)
		}
		for _, r := range code[1:] {
			if !strings.ContainsRune(joinCodeAlphabet, r) {
				t.Fatalf("character %q outside the code alphabet in %q", r, code)
			}
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 150 {
		t.Errorf("expected mostly unique codes, got %d unique of 200", len(seen))
	}
}
