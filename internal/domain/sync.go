package domain

import "time"

// SyncCheckpoint records the last remote-acknowledged state of a document.
// A document is pushed again only when its local UpdatedAt is newer than
// SyncedVersion; checkpoints advance only on confirmed remote writes.
type SyncCheckpoint struct {
	DocumentID    string
	OwnerID       string
	SyncedVersion time.Time
	SyncedAt      time.Time
}

// SyncReport is the outcome of one sync run. Failures are collected per
// document rather than aborting the batch.
type SyncReport struct {
	SyncedCount int
	FailedCount int
	Errors      []string
}

// NeedsSync reports whether a document with the given local version must be
// pushed given its checkpoint (nil means never synced).
func NeedsSync(localVersion time.Time, cp *SyncCheckpoint) bool {
	if cp == nil {
		return true
	}
	return localVersion.After(cp.SyncedVersion)
}
