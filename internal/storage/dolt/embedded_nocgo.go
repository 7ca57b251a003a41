//go:build !cgo

package dolt

import (
	"context"
	"errors"
	"fmt"
)

var errNoCGO = errors.New("dolt: this binary was built without CGO support; rebuild with CGO_ENABLED=1")

// Open returns an error in non-CGO builds. Use OpenServer to reach a dolt
// sql-server instead.
func Open(_ context.Context, _ Config) (*Store, error) {
	return nil, fmt.Errorf("embedded mode requires CGO: %w\n\nTo use Dolt without CGO, run `dolt sql-server` and set backend: mysql", errNoCGO)
}
