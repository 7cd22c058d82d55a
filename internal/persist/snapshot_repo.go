package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/world"
)

// SnapshotRepo writes and reads whole-world save states.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes one world snapshot with every live animal. Returns the new
// snapshot id.
func (r *SnapshotRepo) Save(ctx context.Context, ws *world.State) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO world_snapshots (sim_tick, sim_clock_ns, season, weather, animal_count)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		int64(ws.Tick()), int64(ws.Now()), ws.Season.String(), ws.Weather.String(), ws.Count(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert world snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	var encodeErr error
	ws.All(func(a *world.Animal) {
		if encodeErr != nil {
			return
		}
		body, err := EncodeAnimal(a)
		if err != nil {
			encodeErr = err
			return
		}
		batch.Queue(
			`INSERT INTO animal_snapshots (snapshot_id, animal_id, species, tamed, body)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, int64(a.ID), a.Species.String(), a.Tamed, body)
	})
	if encodeErr != nil {
		return 0, encodeErr
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("insert animal snapshots: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}

	r.db.log.Info("world snapshot saved",
		zap.Int64("snapshot", id),
		zap.Uint64("tick", ws.Tick()),
		zap.Int("animals", ws.Count()))
	return id, nil
}

// LoadLatest reads the newest snapshot's animals, decoded but not yet
// installed into a world.
func (r *SnapshotRepo) LoadLatest(ctx context.Context) ([]*world.Animal, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id FROM world_snapshots ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find latest snapshot: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT body FROM animal_snapshots WHERE snapshot_id = $1 ORDER BY animal_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query animal snapshots: %w", err)
	}
	defer rows.Close()

	var out []*world.Animal
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan animal snapshot: %w", err)
		}
		a, err := DecodeAnimal(body)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
