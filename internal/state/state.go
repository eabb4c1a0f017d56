package state

import "github.com/starford/ansuz/internal/models"

// Store defines the interface for cycle-journal operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Store interface {
	RecordCycle(c models.CycleRecord) error
	RecentCycles(limit int) ([]models.CycleRecord, error)
	SetFingerprint(fp int32) error
	Fingerprint() (int32, bool, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
