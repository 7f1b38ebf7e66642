package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const conceptCacheTTL = 30 * time.Second

// Meta describes a stored snapshot row without its full body, for listing.
type Meta struct {
	ID        uuid.UUID `db:"id" json:"id"`
	NarID     string    `db:"nar_id" json:"nar_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type snapshotRow struct {
	ID        uuid.UUID `db:"id"`
	NarID     string    `db:"nar_id"`
	Body      []byte    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository persists Snapshots as JSONB rows in Postgres and uses Redis as
// a short-TTL concept-lookup cache (spec §4.7).
type Repository struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *slog.Logger
}

// NewRepository constructs a Repository around an already-connected
// Manager.
func NewRepository(m *Manager) *Repository {
	return &Repository{db: m.DB, redis: m.Redis, logger: m.logger}
}

// Export serializes snap and stores it as a new JSONB row, returning its
// generated id.
func (r *Repository) Export(ctx context.Context, snap *Snapshot) (uuid.UUID, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: marshal: %w", err)
	}

	var id uuid.UUID
	const query = `
		INSERT INTO snapshots (nar_id, body)
		VALUES ($1, $2)
		RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, snap.NarID, body).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: insert: %w", err)
	}

	r.logger.Info("snapshot exported", "id", id, "nar_id", snap.NarID,
		"concepts", len(snap.Concepts), "overflow", len(snap.Overflow))
	return id, nil
}

// Import retrieves and deserializes the snapshot row with the given id.
func (r *Repository) Import(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var row snapshotRow
	const query = `SELECT id, nar_id, body, created_at FROM snapshots WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot: not found: %s", id)
		}
		return nil, fmt.Errorf("snapshot: select: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(row.Body, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}

	r.logger.Info("snapshot imported", "id", id, "nar_id", snap.NarID)
	return &snap, nil
}

// Latest retrieves the most recently exported snapshot for a given reasoner
// identity.
func (r *Repository) Latest(ctx context.Context, narID string) (*Snapshot, error) {
	var row snapshotRow
	const query = `
		SELECT id, nar_id, body, created_at FROM snapshots
		WHERE nar_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &row, query, narID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot: no snapshot for nar_id %s", narID)
		}
		return nil, fmt.Errorf("snapshot: select latest: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(row.Body, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &snap, nil
}

// List returns metadata for every stored snapshot of a reasoner identity,
// most recent first.
func (r *Repository) List(ctx context.Context, narID string) ([]Meta, error) {
	var rows []Meta
	const query = `
		SELECT id, nar_id, created_at FROM snapshots
		WHERE nar_id = $1
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, narID); err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	return rows, nil
}

// CacheConcept stores rec in Redis under a short TTL, keyed by term, for
// GetCachedConcept to read back. The API's concept-lookup endpoint does not
// use this cache.
func (r *Repository) CacheConcept(ctx context.Context, narID string, rec ConceptRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	key := conceptCacheKey(narID, rec.Term)
	if err := r.redis.Set(ctx, key, data, conceptCacheTTL).Err(); err != nil {
		r.logger.Warn("snapshot: failed to cache concept", "term", rec.Term, "error", err)
	}
}

// GetCachedConcept retrieves a cached ConceptRecord, if present and fresh.
func (r *Repository) GetCachedConcept(ctx context.Context, narID, term string) (*ConceptRecord, bool) {
	data, err := r.redis.Get(ctx, conceptCacheKey(narID, term)).Bytes()
	if err != nil {
		return nil, false
	}
	var rec ConceptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// CacheOverflowConcept persists an evicted concept's record in Redis with
// no expiry, so the overflow ("subconscious") cache survives a process
// restart even though the in-memory Store.OverflowAll does not.
func (r *Repository) CacheOverflowConcept(ctx context.Context, narID string, rec ConceptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("snapshot: marshal overflow concept: %w", err)
	}
	return r.redis.Set(ctx, overflowCacheKey(narID, rec.Term), data, 0).Err()
}

// TakeOverflowConcept retrieves and removes a persisted overflow concept
// record, mirroring Overflow.Take's remove-on-read contract.
func (r *Repository) TakeOverflowConcept(ctx context.Context, narID, term string) (*ConceptRecord, bool) {
	key := overflowCacheKey(narID, term)
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	r.redis.Del(ctx, key)

	var rec ConceptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func conceptCacheKey(narID, term string) string {
	return fmt.Sprintf("nars:%s:concept:%s", narID, term)
}

func overflowCacheKey(narID, term string) string {
	return fmt.Sprintf("nars:%s:overflow:%s", narID, term)
}
