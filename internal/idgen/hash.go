// Package idgen generates short content-derived recipe ids.
package idgen

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultPrefix and DefaultLength are used when config leaves id.prefix or
// id.length unset.
const (
	DefaultPrefix = "rc"
	DefaultLength = 6
)

// MaxAttempts bounds how many nonces Generate tries before giving up.
const MaxAttempts = 100

// EncodeBase36 converts a byte slice to a base36 string of exactly length
// characters, zero-padded on the left or truncated to the least significant
// digits.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)
	base := big.NewInt(36)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var sb strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		sb.WriteByte(chars[i])
	}

	str := sb.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// HashID derives an id for a recipe version from its title, owner, parent
// and creation time. The nonce is bumped by callers on collision.
// Lengths outside 3-8 are clamped.
func HashID(prefix, title, owner, parentID string, createdAt time.Time, length, nonce int) string {
	if length < 3 {
		length = 3
	}
	if length > 8 {
		length = 8
	}

	content := fmt.Sprintf("%s|%s|%s|%d|%d", title, owner, parentID, createdAt.UnixNano(), nonce)
	hash := sha256.Sum256([]byte(content))

	// Enough bytes to fill length base36 digits: each byte carries ~1.55 digits.
	var numBytes int
	switch length {
	case 3:
		numBytes = 2
	case 4:
		numBytes = 3
	case 5, 6:
		numBytes = 4
	default:
		numBytes = 5
	}

	return fmt.Sprintf("%s-%s", prefix, EncodeBase36(hash[:numBytes], length))
}

// ExistsFunc reports whether an id is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Generator hands out collision-free ids for one store.
type Generator struct {
	Prefix string
	Length int
	Exists ExistsFunc
}

// Generate returns the first HashID, over increasing nonces, that Exists
// reports as free.
func (g Generator) Generate(ctx context.Context, title, owner, parentID string, createdAt time.Time) (string, error) {
	prefix := g.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	length := g.Length
	if length == 0 {
		length = DefaultLength
	}

	for nonce := 0; nonce < MaxAttempts; nonce++ {
		id := HashID(prefix, title, owner, parentID, createdAt, length, nonce)
		if g.Exists == nil {
			return id, nil
		}
		taken, err := g.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check id %s: %w", id, err)
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free id after %d attempts (prefix %q, length %d)", MaxAttempts, prefix, length)
}
