package domain

import (
	"fmt"
	"time"
)

// DatabaseKind distinguishes the default personal store from user-connected
// external stores.
type DatabaseKind string

const (
	DatabaseKindPersonal DatabaseKind = "personal"
	DatabaseKindExternal DatabaseKind = "external"
)

// ConnectionConfig holds the settings needed to reach an external knowledge
// database. Empty for the personal store, which lives in the service's own
// Postgres instance.
type ConnectionConfig struct {
	DSN string
}

// KnowledgeDatabase is a registered knowledge-base store. At most one
// database per owner is active at any time; the active flag is the only
// field mutated after registration.
type KnowledgeDatabase struct {
	ID               string
	OwnerID          string
	Name             string
	Kind             DatabaseKind
	ConnectionConfig ConnectionConfig
	IsActive         bool
	CreatedAt        time.Time
}

// NewKnowledgeDatabase creates an inactive KnowledgeDatabase instance.
// Activation happens through the database manager's switch operation.
func NewKnowledgeDatabase(id, ownerID, name string, kind DatabaseKind, cfg ConnectionConfig, createdAt time.Time) *KnowledgeDatabase {
	return &KnowledgeDatabase{
		ID:               id,
		OwnerID:          ownerID,
		Name:             name,
		Kind:             kind,
		ConnectionConfig: cfg,
		IsActive:         false,
		CreatedAt:        createdAt,
	}
}

// ValidateKnowledgeDatabase validates a KnowledgeDatabase instance.
func ValidateKnowledgeDatabase(db *KnowledgeDatabase) error {
	if db == nil {
		return fmt.Errorf("knowledge database cannot be nil")
	}

	if db.ID == "" {
		return fmt.Errorf("knowledge database ID is required")
	}

	if db.OwnerID == "" {
		return fmt.Errorf("knowledge database OwnerID is required")
	}

	if db.Name == "" {
		return fmt.Errorf("knowledge database Name is required")
	}

	if !isValidDatabaseKind(db.Kind) {
		return fmt.Errorf("knowledge database Kind is invalid: %s", db.Kind)
	}

	if db.Kind == DatabaseKindExternal && db.ConnectionConfig.DSN == "" {
		return fmt.Errorf("external knowledge database requires a connection DSN")
	}

	return nil
}

// isValidDatabaseKind checks if a DatabaseKind is valid.
func isValidDatabaseKind(k DatabaseKind) bool {
	switch k {
	case DatabaseKindPersonal, DatabaseKindExternal:
		return true
	}
	return false
}
