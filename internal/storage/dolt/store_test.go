package dolt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	t.Setenv("GIT_AUTHOR_NAME", "")
	t.Setenv("GIT_AUTHOR_EMAIL", "")

	var cfg Config
	cfg.applyDefaults()
	if cfg.Database != "collaboreats" || cfg.CommitterName != "collaboreats" || cfg.CommitterEmail != "collaboreats@local" {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Setenv("GIT_AUTHOR_NAME", "Ana")
	cfg = Config{}
	cfg.applyDefaults()
	if cfg.CommitterName != "Ana" {
		t.Errorf("committer = %q, want env value", cfg.CommitterName)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		err       error
		duplicate bool
		nothing   bool
	}{
		{errors.New("duplicate primary key given: [rc-1]"), true, false},
		{errors.New("Error 1062: Duplicate entry 'rc-1' for key 'PRIMARY'"), true, false},
		{errors.New("nothing to commit"), false, true},
		{errors.New("table not found: recipes"), false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		if got := isDuplicate(tt.err); got != tt.duplicate {
			t.Errorf("isDuplicate(%v) = %v", tt.err, got)
		}
		if got := isNothingToCommit(tt.err); got != tt.nothing {
			t.Errorf("isNothingToCommit(%v) = %v", tt.err, got)
		}
	}
}

func TestCloseWithTimeout(t *testing.T) {
	want := errors.New("boom")
	if err := CloseWithTimeout("x", func() error { return want }); !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
	if err := CloseWithTimeout("x", func() error { return nil }); err != nil {
		t.Errorf("err = %v", err)
	}
}

func TestCloseWithTimeoutHangs(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for CloseTimeout")
	}
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := CloseWithTimeout("engine", func() error { <-release; return nil })
	if err == nil || !strings.Contains(err.Error(), "engine close timed out") {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) < CloseTimeout {
		t.Errorf("returned before timeout")
	}
}

func TestAuthorString(t *testing.T) {
	if got := authorString("Ana", "ana@example.com"); got != "Ana <ana@example.com>" {
		t.Errorf("authorString = %q", got)
	}
}
