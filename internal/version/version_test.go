package version

import (
	"strings"
	"testing"
)

func TestString_ShortensCommit(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "0123456789abcdef"
	if got := String(); !strings.Contains(got, "commit: 0123456,") {
		t.Errorf("String() = %q, want short commit", got)
	}
}

func TestBanner(t *testing.T) {
	if got := Banner(); !strings.HasPrefix(got, Name) {
		t.Errorf("Banner() = %q, want prefix %q", got, Name)
	}
}
