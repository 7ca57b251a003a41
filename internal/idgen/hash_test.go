package idgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncodeBase36(t *testing.T) {
	tests := []struct {
		data   []byte
		length int
		want   string
	}{
		{[]byte{0}, 3, "000"},
		{[]byte{35}, 2, "0z"},
		{[]byte{36}, 3, "010"},
		{[]byte{0x01, 0x00}, 4, "0074"}, // 256 = 7*36 + 4
		{[]byte{0xff, 0xff}, 2, "kf"},   // 65535 = "1ekf", truncated
	}

	for _, tt := range tests {
		got := EncodeBase36(tt.data, tt.length)
		if got != tt.want {
			t.Errorf("EncodeBase36(%v, %d) = %q, want %q", tt.data, tt.length, got, tt.want)
		}
	}
}

func TestHashIDShape(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for length := 3; length <= 8; length++ {
		id := HashID("rc", "Pad thai", "nok", "", ts, length, 0)
		suffix, ok := strings.CutPrefix(id, "rc-")
		if !ok {
			t.Fatalf("id %q is missing prefix", id)
		}
		if len(suffix) != length {
			t.Errorf("length %d: got suffix %q", length, suffix)
		}
		for _, c := range suffix {
			if !strings.ContainsRune(base36Alphabet, c) {
				t.Errorf("id %q has non-base36 rune %q", id, c)
			}
		}
	}
}

func TestHashIDDeterministic(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a := HashID("rc", "Pad thai", "nok", "rc-abc123", ts, 6, 0)
	b := HashID("rc", "Pad thai", "nok", "rc-abc123", ts, 6, 0)
	if a != b {
		t.Fatalf("same inputs gave %q and %q", a, b)
	}
	if c := HashID("rc", "Pad thai", "nok", "rc-abc123", ts, 6, 1); c == a {
		t.Errorf("nonce did not change id %q", a)
	}
	if d := HashID("rc", "Pad thai", "nok", "rc-zzz999", ts, 6, 0); d == a {
		t.Errorf("parent did not change id %q", a)
	}
}

func TestHashIDClampsLength(t *testing.T) {
	ts := time.Unix(0, 0)
	if got := HashID("rc", "t", "o", "", ts, 1, 0); len(got) != len("rc-")+3 {
		t.Errorf("short length not clamped: %q", got)
	}
	if got := HashID("rc", "t", "o", "", ts, 20, 0); len(got) != len("rc-")+8 {
		t.Errorf("long length not clamped: %q", got)
	}
}

func TestGeneratorSkipsTakenIDs(t *testing.T) {
	ts := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	first := HashID("rc", "Soup", "ana", "", ts, 6, 0)
	second := HashID("rc", "Soup", "ana", "", ts, 6, 1)

	g := Generator{
		Prefix: "rc",
		Length: 6,
		Exists: func(_ context.Context, id string) (bool, error) {
			return id == first, nil
		},
	}
	got, err := g.Generate(context.Background(), "Soup", "ana", "", ts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != second {
		t.Errorf("Generate = %q, want %q", got, second)
	}
}

func TestGeneratorDefaults(t *testing.T) {
	got, err := Generator{}.Generate(context.Background(), "Soup", "ana", "", time.Unix(1, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, DefaultPrefix+"-") || len(got) != len(DefaultPrefix)+1+DefaultLength {
		t.Errorf("Generate = %q, want %s-<%d chars>", got, DefaultPrefix, DefaultLength)
	}
}

func TestGeneratorErrors(t *testing.T) {
	boom := errors.New("boom")
	g := Generator{Exists: func(context.Context, string) (bool, error) { return false, boom }}
	if _, err := g.Generate(context.Background(), "t", "o", "", time.Unix(1, 0)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}

	g = Generator{Exists: func(context.Context, string) (bool, error) { return true, nil }}
	if _, err := g.Generate(context.Background(), "t", "o", "", time.Unix(1, 0)); err == nil {
		t.Error("expected exhaustion error")
	}
}
