package storage

import (
	"context"
	"time"
)

// VersionedStorage extends Storage with commit history. It is implemented by
// backends that keep their data under version control (Dolt).
type VersionedStorage interface {
	Storage

	// Commit records all pending changes under message.
	Commit(ctx context.Context, message string) error

	// Log returns the most recent commits, newest first.
	Log(ctx context.Context, limit int) ([]CommitInfo, error)
}

// CommitInfo is one entry of a versioned store's history.
type CommitInfo struct {
	Hash      string    `json:"hash"`
	Committer string    `json:"committer"`
	Email     string    `json:"email"`
	Date      time.Time `json:"date"`
	Message   string    `json:"message"`
}

// AsVersioned attempts to cast a Storage to VersionedStorage.
//
//	vs, ok := storage.AsVersioned(store)
//	if !ok {
//	    return fmt.Errorf("history requires the dolt backend")
//	}
//
// Decorators that expose Unwrap() Storage are looked through.
func AsVersioned(s Storage) (VersionedStorage, bool) {
	for s != nil {
		if vs, ok := s.(VersionedStorage); ok {
			return vs, true
		}
		u, ok := s.(interface{ Unwrap() Storage })
		if !ok {
			break
		}
		s = u.Unwrap()
	}
	return nil, false
}
