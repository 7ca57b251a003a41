package storage

import (
	"strings"
	"testing"
)

func TestSQLiteConnString(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		readOnly bool
		want     []string
		notWant  []string
	}{
		{
			name: "plain path",
			path: "/tmp/ce.db",
			want: []string{"file:/tmp/ce.db?", "_pragma=busy_timeout(30000)", "_pragma=foreign_keys(ON)", "_pragma=journal_mode(WAL)"},
		},
		{
			name:     "read only",
			path:     "/tmp/ce.db",
			readOnly: true,
			want:     []string{"mode=ro", "_pragma=foreign_keys(ON)"},
			notWant:  []string{"journal_mode"},
		},
		{
			name:    "memory",
			path:    "file::memory:?cache=shared",
			want:    []string{"file::memory:?cache=shared&_pragma=busy_timeout"},
			notWant: []string{"journal_mode"},
		},
		{
			name:    "existing pragma kept",
			path:    "file:/tmp/ce.db?_pragma=busy_timeout(5)",
			want:    []string{"busy_timeout(5)"},
			notWant: []string{"busy_timeout(30000)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CE_LOCK_TIMEOUT", "")
			got := SQLiteConnString(tt.path, tt.readOnly)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("SQLiteConnString(%q) = %q, missing %q", tt.path, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("SQLiteConnString(%q) = %q, should not contain %q", tt.path, got, nw)
				}
			}
		})
	}

	if got := SQLiteConnString("  ", false); got != "" {
		t.Errorf("blank path = %q, want empty", got)
	}
}

func TestSQLiteConnStringLockTimeout(t *testing.T) {
	t.Setenv("CE_LOCK_TIMEOUT", "2s")
	got := SQLiteConnString("/tmp/ce.db", false)
	if !strings.Contains(got, "busy_timeout(2000)") {
		t.Errorf("got %q, want busy_timeout(2000)", got)
	}
}
