package overlap

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/db"
	"github.com/sells-group/trailshed/internal/income"
)

// Record is one (buffer, block group) overlap with prorated income counts.
// Records are computed once and never updated; a recompute replaces the
// whole set.
type Record struct {
	TrailID         string
	GEOID           string
	BufferSqm       float64
	BlockGroupSqm   float64
	IntersectSqm    float64
	Fraction        float64
	HouseholdsTotal int   // prorated
	BracketCounts   []int // prorated, ascending income order (16 entries)
}

// joinSQL pairs every buffer with every block group it intersects, carries
// the raw areas out of PostGIS, and inner-joins income so block groups
// without an income row silently drop out. Zero-area block groups are
// excluded here so the fraction can never divide by zero.
var joinSQL = `
	SELECT b.trail_id, g.geoid,
	       ST_Area(b.geom) AS buffer_sqm,
	       ST_Area(g.geom) AS bg_sqm,
	       ST_Area(ST_Intersection(b.geom, g.geom)) AS intersect_sqm,
	       i.households_total, ` +
	"i." + strings.Join(income.Columns(), ", i.") + `
	FROM trail.buffers b
	JOIN trail.block_groups g ON ST_Intersects(b.geom, g.geom)
	JOIN trail.income i ON i.geoid = g.geoid
	WHERE ST_Area(g.geom) > 0`

// Compute runs the spatial join, prorates income counts by overlap
// fraction, and returns the resulting records. Pairs whose intersection
// degenerates to zero area (a shared boundary, a touching corner) are
// dropped. No output ordering is guaranteed.
func Compute(ctx context.Context, pool db.Pool) ([]Record, error) {
	log := zap.L().With(zap.String("component", "overlap.compute"))

	rows, err := pool.Query(ctx, joinSQL)
	if err != nil {
		return nil, eris.Wrap(err, "overlap: spatial join query")
	}
	defer rows.Close()

	var (
		records  []Record
		excluded int
	)
	for rows.Next() {
		var (
			rec    Record
			total  int
			counts = make([]int, len(income.Brackets))
		)

		dest := []any{
			&rec.TrailID, &rec.GEOID,
			&rec.BufferSqm, &rec.BlockGroupSqm, &rec.IntersectSqm,
			&total,
		}
		for i := range counts {
			dest = append(dest, &counts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "overlap: scan join row")
		}

		fraction, ok := Fraction(rec.IntersectSqm, rec.BlockGroupSqm)
		if !ok {
			excluded++
			continue
		}

		rec.Fraction = fraction
		rec.HouseholdsTotal = Prorate(total, fraction)
		rec.BracketCounts = ProrateAll(counts, fraction)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "overlap: iterate join rows")
	}

	log.Info("overlap computed",
		zap.Int("records", len(records)),
		zap.Int("excluded_degenerate", excluded),
	)
	return records, nil
}

// persistColumns is the trail.overlaps column list in COPY order.
var persistColumns = append([]string{
	"trail_id", "geoid", "buffer_sqm", "bg_sqm", "intersect_sqm",
	"fraction", "households_total",
}, income.Columns()...)

// Persist replaces trail.overlaps with the given records via COPY.
func Persist(ctx context.Context, pool db.Pool, records []Record) (int64, error) {
	if _, err := pool.Exec(ctx, "TRUNCATE trail.overlaps"); err != nil {
		return 0, eris.Wrap(err, "overlap: truncate overlaps")
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, 0, len(persistColumns))
		row = append(row,
			rec.TrailID, rec.GEOID,
			rec.BufferSqm, rec.BlockGroupSqm, rec.IntersectSqm,
			rec.Fraction, rec.HouseholdsTotal,
		)
		for _, c := range rec.BracketCounts {
			row = append(row, c)
		}
		rows = append(rows, row)
	}

	n, err := db.CopyFromSchema(ctx, pool, "trail", "overlaps", persistColumns, rows)
	if err != nil {
		return 0, err
	}

	zap.L().Info("overlap records persisted",
		zap.String("component", "overlap.persist"),
		zap.Int64("rows", n),
	)
	return n, nil
}

// Load reads previously persisted overlap records back out of
// trail.overlaps for reporting.
func Load(ctx context.Context, pool db.Pool) ([]Record, error) {
	sql := "SELECT " + strings.Join(persistColumns, ", ") + " FROM trail.overlaps"
	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrap(err, "overlap: query overlaps")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec := Record{BracketCounts: make([]int, len(income.Brackets))}
		dest := []any{
			&rec.TrailID, &rec.GEOID,
			&rec.BufferSqm, &rec.BlockGroupSqm, &rec.IntersectSqm,
			&rec.Fraction, &rec.HouseholdsTotal,
		}
		for i := range rec.BracketCounts {
			dest = append(dest, &rec.BracketCounts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, eris.Wrap(err, "overlap: scan overlaps row")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "overlap: iterate overlaps rows")
}
