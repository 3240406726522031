package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roblucci9302/Lucide-3/internal/domain"
)

// DatabaseRepository persists the registry of knowledge databases.
type DatabaseRepository struct {
	db dbtx
}

func NewDatabaseRepository(pool *pgxpool.Pool) *DatabaseRepository {
	return &DatabaseRepository{db: pool}
}

func NewDatabaseRepositoryWithTx(tx pgx.Tx) *DatabaseRepository {
	return &DatabaseRepository{db: tx}
}

func (r *DatabaseRepository) Create(ctx context.Context, d *domain.KnowledgeDatabase) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_databases (id, owner_id, name, kind, dsn, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.OwnerID, d.Name, d.Kind, nullableString(d.ConnectionConfig.DSN), d.IsActive, d.CreatedAt,
	)
	return err
}

func (r *DatabaseRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeDatabase, error) {
	var d domain.KnowledgeDatabase
	var dsn *string
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, kind, dsn, is_active, created_at
		 FROM knowledge_databases WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OwnerID, &d.Name, &d.Kind, &dsn, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDatabaseNotFound
		}
		return nil, err
	}
	if dsn != nil {
		d.ConnectionConfig.DSN = *dsn
	}
	return &d, nil
}

func (r *DatabaseRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.KnowledgeDatabase, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, name, kind, dsn, is_active, created_at
		 FROM knowledge_databases WHERE owner_id = $1 ORDER BY created_at`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.KnowledgeDatabase
	for rows.Next() {
		var d domain.KnowledgeDatabase
		var dsn *string
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Kind, &dsn, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		if dsn != nil {
			d.ConnectionConfig.DSN = *dsn
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}

// GetActive returns the owner's active database, or ErrNoActiveDatabase.
func (r *DatabaseRepository) GetActive(ctx context.Context, ownerID string) (*domain.KnowledgeDatabase, error) {
	var d domain.KnowledgeDatabase
	var dsn *string
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, kind, dsn, is_active, created_at
		 FROM knowledge_databases WHERE owner_id = $1 AND is_active`,
		ownerID,
	).Scan(&d.ID, &d.OwnerID, &d.Name, &d.Kind, &dsn, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveDatabase
		}
		return nil, err
	}
	if dsn != nil {
		d.ConnectionConfig.DSN = *dsn
	}
	return &d, nil
}

// Activate makes one database active for an owner and deactivates the rest.
// Both statements run on the same dbtx, so under a transaction the switch is
// all-or-nothing.
func (r *DatabaseRepository) Activate(ctx context.Context, ownerID, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE knowledge_databases SET is_active = FALSE WHERE owner_id = $1 AND is_active`,
		ownerID,
	)
	if err != nil {
		return err
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_databases SET is_active = TRUE WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDatabaseNotFound
	}
	return nil
}

func (r *DatabaseRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_databases WHERE owner_id = $1`,
		ownerID,
	).Scan(&count)
	return count, err
}

func (r *DatabaseRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_databases WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDatabaseNotFound
	}
	return nil
}
