package persist

import (
	"context"
	"fmt"
)

// GeometryRow is one durable static body. Columns mirror the collision
// engine's StaticBody minus the runtime-only external index.
type GeometryRow struct {
	ID          uint64
	CX          float64
	CY          float64
	HalfW       float64
	HalfH       float64
	Layer       uint32
	Mask        uint32
	IsTrigger   bool
	TriggerTag  int16
	TriggerType int16
}

type GeometryRepo struct {
	db *DB
}

func NewGeometryRepo(db *DB) *GeometryRepo {
	return &GeometryRepo{db: db}
}

func (r *GeometryRepo) LoadAll(ctx context.Context) ([]GeometryRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, cx, cy, half_w, half_h, layer, mask, is_trigger, trigger_tag, trigger_type
		 FROM static_geometry
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load static geometry: %w", err)
	}
	defer rows.Close()

	var result []GeometryRow
	for rows.Next() {
		var g GeometryRow
		var id, layer, mask int64
		if err := rows.Scan(&id, &g.CX, &g.CY, &g.HalfW, &g.HalfH,
			&layer, &mask, &g.IsTrigger, &g.TriggerTag, &g.TriggerType); err != nil {
			return nil, fmt.Errorf("scan static geometry: %w", err)
		}
		g.ID = uint64(id)
		g.Layer = uint32(layer)
		g.Mask = uint32(mask)
		result = append(result, g)
	}
	return result, rows.Err()
}

// Save upserts one body.
func (r *GeometryRepo) Save(ctx context.Context, g GeometryRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO static_geometry (id, cx, cy, half_w, half_h, layer, mask, is_trigger, trigger_tag, trigger_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   cx = EXCLUDED.cx, cy = EXCLUDED.cy,
		   half_w = EXCLUDED.half_w, half_h = EXCLUDED.half_h,
		   layer = EXCLUDED.layer, mask = EXCLUDED.mask,
		   is_trigger = EXCLUDED.is_trigger,
		   trigger_tag = EXCLUDED.trigger_tag,
		   trigger_type = EXCLUDED.trigger_type`,
		int64(g.ID), g.CX, g.CY, g.HalfW, g.HalfH,
		int64(g.Layer), int64(g.Mask), g.IsTrigger, g.TriggerTag, g.TriggerType,
	)
	if err != nil {
		return fmt.Errorf("save static geometry %d: %w", g.ID, err)
	}
	return nil
}

// SaveBatch upserts a set of bodies in one transaction, the geomload path.
func (r *GeometryRepo) SaveBatch(ctx context.Context, batch []GeometryRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("geometry batch begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, g := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO static_geometry (id, cx, cy, half_w, half_h, layer, mask, is_trigger, trigger_tag, trigger_type)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO UPDATE SET
			   cx = EXCLUDED.cx, cy = EXCLUDED.cy,
			   half_w = EXCLUDED.half_w, half_h = EXCLUDED.half_h,
			   layer = EXCLUDED.layer, mask = EXCLUDED.mask,
			   is_trigger = EXCLUDED.is_trigger,
			   trigger_tag = EXCLUDED.trigger_tag,
			   trigger_type = EXCLUDED.trigger_type`,
			int64(g.ID), g.CX, g.CY, g.HalfW, g.HalfH,
			int64(g.Layer), int64(g.Mask), g.IsTrigger, g.TriggerTag, g.TriggerType,
		); err != nil {
			return fmt.Errorf("geometry batch insert %d: %w", g.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *GeometryRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM static_geometry WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("delete static geometry %d: %w", id, err)
	}
	return nil
}
