package overlap

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/db"
)

// UnionBufferID is the trail_id carried by the single row produced when
// buffers are pre-unioned. Unioning removes the per-segment double count
// that occurs when one block group touches buffers from several trail
// segments.
const UnionBufferID = "union"

// BufferOptions configures trail buffer generation.
type BufferOptions struct {
	RadiusMeters float64 // buffer radius in working-projection meters
	QuadSegments int     // arc approximation segments per quarter circle
	Union        bool    // dissolve all buffers into one polygon first
}

// GenerateBuffers replaces trail.buffers with a fresh buffer polygon per
// trail feature (or a single unioned polygon). Geometries are assumed to
// already be in the working planar SRID, so the radius is in meters.
func GenerateBuffers(ctx context.Context, pool db.Pool, opts BufferOptions) (int64, error) {
	if opts.RadiusMeters <= 0 {
		return 0, eris.Errorf("overlap: buffer radius must be positive, got %f", opts.RadiusMeters)
	}
	if opts.QuadSegments <= 0 {
		opts.QuadSegments = 8
	}

	log := zap.L().With(
		zap.String("component", "overlap.buffer"),
		zap.Float64("radius_m", opts.RadiusMeters),
		zap.Bool("union", opts.Union),
	)

	if _, err := pool.Exec(ctx, "TRUNCATE trail.buffers"); err != nil {
		return 0, eris.Wrap(err, "overlap: truncate buffers")
	}

	var sql string
	if opts.Union {
		sql = `
			INSERT INTO trail.buffers (trail_id, geom, area_sqm)
			SELECT $3, buf, ST_Area(buf)
			FROM (
				SELECT ST_Multi(ST_Union(ST_Buffer(geom, $1, $2))) AS buf
				FROM trail.trails
			) s
			WHERE buf IS NOT NULL`
	} else {
		sql = `
			INSERT INTO trail.buffers (trail_id, geom, area_sqm)
			SELECT trail_id, buf, ST_Area(buf)
			FROM (
				SELECT trail_id, ST_Multi(ST_Buffer(geom, $1, $2)) AS buf
				FROM trail.trails
			) s`
	}

	args := []any{opts.RadiusMeters, opts.QuadSegments}
	if opts.Union {
		args = append(args, UnionBufferID)
	}

	tag, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, eris.Wrap(err, "overlap: generate buffers")
	}

	n := tag.RowsAffected()
	log.Info("buffers generated", zap.Int64("rows", n))
	return n, nil
}
