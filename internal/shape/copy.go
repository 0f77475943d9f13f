package shape

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/db"
)

const defaultBatchSize = 50000

// BulkLoad loads parsed rows into a trail.* table using COPY protocol.
// Batches in chunks of batchSize rows (0 = default 50,000).
func BulkLoad(ctx context.Context, pool db.Pool, layer Layer, rows [][]any, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	columns := make([]string, len(layer.Columns))
	copy(columns, layer.Columns)
	columns = append(columns, "geom")

	log := zap.L().With(
		zap.String("component", "shape.copy"),
		zap.String("table", "trail."+layer.Table),
		zap.Int("total_rows", len(rows)),
	)

	var total int64
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]

		n, err := pool.CopyFrom(
			ctx,
			pgx.Identifier{"trail", layer.Table},
			columns,
			pgx.CopyFromRows(batch),
		)
		if err != nil {
			return total, eris.Wrapf(err, "shape: COPY into trail.%s (batch %d-%d)", layer.Table, i, end)
		}
		total += n

		log.Debug("batch loaded",
			zap.Int("batch_start", i),
			zap.Int("batch_end", end),
			zap.Int64("batch_rows", n),
		)
	}

	return total, nil
}

// TruncateTable truncates a trail.* table before reloading.
func TruncateTable(ctx context.Context, pool db.Pool, layer Layer) error {
	sql := fmt.Sprintf("TRUNCATE %s", pgx.Identifier{"trail", layer.Table}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "shape: truncate trail.%s", layer.Table)
	}
	return nil
}

// TransformToWorking reprojects a layer's geometries into the working
// planar SRID. Every area and intersection computation downstream assumes
// this has run; geographic-coordinate areas would make the overlap
// fractions meaningless.
func TransformToWorking(ctx context.Context, pool db.Pool, layer Layer, srid int) (int64, error) {
	sql := fmt.Sprintf(
		"UPDATE %s SET geom = ST_Multi(ST_Transform(geom, $1)) WHERE ST_SRID(geom) <> $1",
		pgx.Identifier{"trail", layer.Table}.Sanitize(),
	)
	tag, err := pool.Exec(ctx, sql, srid)
	if err != nil {
		return 0, eris.Wrapf(err, "shape: transform trail.%s to SRID %d", layer.Table, srid)
	}
	return tag.RowsAffected(), nil
}

// StatusRow represents a row from trail.load_status.
type StatusRow struct {
	Layer      string
	StateFIPS  string
	Year       int
	RowCount   int
	LoadedAt   time.Time
	DurationMs int
}

// IsLoaded checks if a layer has already been loaded for a given state/year.
// Layers without a state component use an empty stateFIPS.
func IsLoaded(ctx context.Context, pool db.Pool, layer, stateFIPS string, year int) (bool, error) {
	var count int
	row := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM trail.load_status WHERE layer = $1 AND state_fips = $2 AND year = $3",
		layer, stateFIPS, year,
	)
	if err := row.Scan(&count); err != nil {
		return false, eris.Wrap(err, "shape: check load status")
	}
	return count > 0, nil
}

// RecordLoad inserts or updates the load_status record for a completed load.
func RecordLoad(ctx context.Context, pool db.Pool, layer, stateFIPS string, year, rowCount, durationMs int) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO trail.load_status (layer, state_fips, year, row_count, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (layer, state_fips, year) DO UPDATE SET
			row_count = EXCLUDED.row_count,
			loaded_at = now(),
			duration_ms = EXCLUDED.duration_ms`,
		layer, stateFIPS, year, rowCount, durationMs,
	)
	if err != nil {
		return eris.Wrap(err, "shape: record load status")
	}
	return nil
}

// LoadStatus returns current load status from trail.load_status.
func LoadStatus(ctx context.Context, pool db.Pool) ([]StatusRow, error) {
	rows, err := pool.Query(ctx, `
		SELECT layer, state_fips, year, row_count, loaded_at, COALESCE(duration_ms, 0)
		FROM trail.load_status
		ORDER BY layer, state_fips`)
	if err != nil {
		return nil, eris.Wrap(err, "shape: query load status")
	}
	defer rows.Close()

	var status []StatusRow
	for rows.Next() {
		var sr StatusRow
		if err := rows.Scan(&sr.Layer, &sr.StateFIPS, &sr.Year, &sr.RowCount, &sr.LoadedAt, &sr.DurationMs); err != nil {
			return nil, eris.Wrap(err, "shape: scan load status row")
		}
		status = append(status, sr)
	}
	return status, rows.Err()
}
