package domain

import "testing"

func TestIgnoreSetMatch(t *testing.T) {
	set, err := NewIgnoreSet([]string{"*.backupdb", ".git", "tmp*"})
	if err != nil {
		t.Fatalf("NewIgnoreSet: %v", err)
	}

	tests := []struct {
		name string
		want bool
	}{
		{name: "Backups.backupdb", want: true},
		{name: ".git", want: true},
		{name: "tmp", want: true},
		{name: "tmp-build", want: true},
		{name: "pictures", want: false},
		{name: "backupdb", want: false},
		{name: ".gitignore", want: false},
	}

	for _, tt := range tests {
		if got := set.Match(tt.name); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIgnoreSetEmpty(t *testing.T) {
	set, err := NewIgnoreSet(nil)
	if err != nil {
		t.Fatalf("NewIgnoreSet: %v", err)
	}
	if set.Match("anything") {
		t.Error("empty set should match nothing")
	}
}

func TestIgnoreSetInvalidPattern(t *testing.T) {
	if _, err := NewIgnoreSet([]string{"[unclosed"}); err == nil {
		t.Error("expected error for malformed pattern")
	}
}
