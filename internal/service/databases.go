package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// ConnectionTester checks that an external database DSN is reachable.
type ConnectionTester interface {
	TestConnection(ctx context.Context, dsn string) error
}

// DatabaseStatus reports the owner's registry and active-database contents.
type DatabaseStatus struct {
	ActiveDatabase *domain.KnowledgeDatabase
	DatabaseCount  int
	Stats          *domain.DocumentStats
}

// DatabaseService manages the registry of knowledge databases and the
// per-owner active pointer.
type DatabaseService struct {
	databases DatabaseRepositoryInterface
	docs      DocumentRepositoryInterface
	txRunner  TxRunner
	tester    ConnectionTester
	gate      *OwnerGate
}

func NewDatabaseService(databases DatabaseRepositoryInterface, docs DocumentRepositoryInterface, txRunner TxRunner, tester ConnectionTester, gate *OwnerGate) *DatabaseService {
	if gate == nil {
		gate = NewOwnerGate()
	}
	return &DatabaseService{
		databases: databases,
		docs:      docs,
		txRunner:  txRunner,
		tester:    tester,
		gate:      gate,
	}
}

// EnsurePersonalDatabase registers the owner's personal store if it does not
// exist yet. The call is idempotent; a freshly created first database
// becomes active immediately.
func (s *DatabaseService) EnsurePersonalDatabase(ctx context.Context, ownerID, name string) (*domain.KnowledgeDatabase, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if name == "" {
		name = "personal"
	}

	existing, err := s.databases.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, db := range existing {
		if db.Kind == domain.DatabaseKindPersonal && db.Name == name {
			return db, nil
		}
	}

	db := domain.NewKnowledgeDatabase(uuid.NewString(), ownerID, name, domain.DatabaseKindPersonal, domain.ConnectionConfig{}, time.Now().UTC())
	if err := domain.ValidateKnowledgeDatabase(db); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge database", err)
	}

	if err := s.databases.Create(ctx, db); err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		if err := s.Switch(ctx, ownerID, db.ID); err != nil {
			return nil, err
		}
		db.IsActive = true
	}

	return db, nil
}

// Add registers a knowledge database. The first database an owner registers
// becomes active; later ones start inactive until switched to.
func (s *DatabaseService) Add(ctx context.Context, ownerID, name string, kind domain.DatabaseKind, cfg domain.ConnectionConfig) (*domain.KnowledgeDatabase, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	db := domain.NewKnowledgeDatabase(uuid.NewString(), ownerID, name, kind, cfg, time.Now().UTC())
	if err := domain.ValidateKnowledgeDatabase(db); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge database", err)
	}

	count, err := s.databases.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.databases.Create(ctx, db); err != nil {
		return nil, err
	}

	if count == 0 {
		if err := s.Switch(ctx, ownerID, db.ID); err != nil {
			return nil, err
		}
		db.IsActive = true
	}

	return db, nil
}

// Switch atomically makes a database the owner's active one. The exclusive
// owner lock holds off reads that already resolved the old pointer, and the
// transaction guarantees there is never a moment with two active rows.
func (s *DatabaseService) Switch(ctx context.Context, ownerID, id string) error {
	db, err := s.databases.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if db.OwnerID != ownerID {
		return domain.ErrDatabaseNotFound
	}

	s.gate.Lock(ownerID)
	defer s.gate.Unlock(ownerID)

	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Databases().Activate(ctx, ownerID, id)
	})
}

// TestConnection verifies a registered database is reachable. Personal
// databases share the service's own store and always pass.
func (s *DatabaseService) TestConnection(ctx context.Context, ownerID, id string) error {
	db, err := s.databases.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if db.OwnerID != ownerID {
		return domain.ErrDatabaseNotFound
	}

	if db.Kind == domain.DatabaseKindPersonal {
		return nil
	}

	if s.tester == nil {
		return domain.NewDomainError(domain.ErrCodeConnection, "no connection tester configured")
	}
	if err := s.tester.TestConnection(ctx, db.ConnectionConfig.DSN); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeConnection, "knowledge database is unreachable", err)
	}
	return nil
}

// TestConfig checks that a connection config is reachable without touching
// the registry or the active pointer.
func (s *DatabaseService) TestConfig(ctx context.Context, cfg domain.ConnectionConfig) error {
	if cfg.DSN == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "dsn is required")
	}
	if s.tester == nil {
		return domain.NewDomainError(domain.ErrCodeConnection, "no connection tester configured")
	}
	if err := s.tester.TestConnection(ctx, cfg.DSN); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeConnection, "connection test failed", err)
	}
	return nil
}

// Remove deletes a registered database. The active database cannot be
// removed; switch away from it first.
func (s *DatabaseService) Remove(ctx context.Context, ownerID, id string) error {
	db, err := s.databases.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if db.OwnerID != ownerID {
		return domain.ErrDatabaseNotFound
	}
	if db.IsActive {
		return domain.NewDomainError(domain.ErrCodeConflict, "cannot remove the active database")
	}

	s.gate.Lock(ownerID)
	defer s.gate.Unlock(ownerID)

	return s.databases.Delete(ctx, id)
}

// List returns all databases the owner has registered.
func (s *DatabaseService) List(ctx context.Context, ownerID string) ([]*domain.KnowledgeDatabase, error) {
	return s.databases.ListByOwner(ctx, ownerID)
}

// Get returns one database the owner has registered.
func (s *DatabaseService) Get(ctx context.Context, ownerID, id string) (*domain.KnowledgeDatabase, error) {
	db, err := s.databases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if db.OwnerID != ownerID {
		return nil, domain.ErrDatabaseNotFound
	}
	return db, nil
}

// Status reports the active database and its contents.
func (s *DatabaseService) Status(ctx context.Context, ownerID string) (*DatabaseStatus, error) {
	s.gate.RLock(ownerID)
	defer s.gate.RUnlock(ownerID)

	count, err := s.databases.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	status := &DatabaseStatus{DatabaseCount: count}

	active, err := s.databases.GetActive(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveDatabase) {
			return status, nil
		}
		return nil, err
	}
	status.ActiveDatabase = active

	stats, err := s.docs.Stats(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	status.Stats = stats

	return status, nil
}
