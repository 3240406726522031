package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsSync(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		localVersion time.Time
		checkpoint   *SyncCheckpoint
		expected     bool
	}{
		{"NeverSynced", base, nil, true},
		{"LocalNewer", base.Add(time.Hour), &SyncCheckpoint{SyncedVersion: base}, true},
		{"UpToDate", base, &SyncCheckpoint{SyncedVersion: base}, false},
		{"CheckpointNewer", base, &SyncCheckpoint{SyncedVersion: base.Add(time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NeedsSync(tt.localVersion, tt.checkpoint))
		})
	}
}
