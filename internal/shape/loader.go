package shape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trailshed/internal/db"
)

// LoadOptions configures shapefile loads.
type LoadOptions struct {
	SRID        int      // working planar SRID geometries are transformed into
	Year        int      // TIGER/Line data year (block groups only)
	States      []string // state abbreviations (block groups only); empty = all 50 + DC
	TempDir     string   // download directory
	Concurrency int      // parallel state downloads (default 3)
	RatePerSec  float64  // census.gov request rate
	BatchSize   int      // COPY batch size (default 50,000)
	Incremental bool     // skip already-loaded states
	DryRun      bool     // parse and validate without loading
}

// LoadTrails parses a local trail-network shapefile and loads it into
// trail.trails, replacing any previous load.
func LoadTrails(ctx context.Context, pool db.Pool, shpPath string, opts LoadOptions) (int64, error) {
	log := zap.L().With(
		zap.String("component", "shape.loader"),
		zap.String("layer", Trails.Name),
		zap.String("path", shpPath),
	)

	start := time.Now()

	rows, err := ParseShapefile(shpPath, Trails)
	if err != nil {
		return 0, eris.Wrap(err, "shape: parse trails")
	}
	log.Info("shapefile parsed", zap.Int("rows", len(rows)))

	if opts.DryRun {
		log.Info("dry run, skipping load", zap.Int("rows", len(rows)))
		return int64(len(rows)), nil
	}

	if err := TruncateTable(ctx, pool, Trails); err != nil {
		return 0, err
	}

	loaded, err := BulkLoad(ctx, pool, Trails, rows, opts.BatchSize)
	if err != nil {
		return 0, err
	}

	transformed, err := TransformToWorking(ctx, pool, Trails, opts.SRID)
	if err != nil {
		return 0, err
	}

	duration := time.Since(start)
	if err := RecordLoad(ctx, pool, Trails.Name, "", opts.Year, int(loaded), int(duration.Milliseconds())); err != nil {
		log.Warn("failed to record load status", zap.Error(err))
	}

	log.Info("trails loaded",
		zap.Int64("rows", loaded),
		zap.Int64("reprojected", transformed),
		zap.Duration("duration", duration),
	)
	return loaded, nil
}

// LoadBlockGroups downloads and loads TIGER/Line block-group boundaries
// for the requested states. States load in parallel, bounded by
// opts.Concurrency; each state is parsed and COPY'd independently and
// reprojected once its rows land.
func LoadBlockGroups(ctx context.Context, pool db.Pool, opts LoadOptions) error {
	if opts.Year == 0 {
		opts.Year = 2024
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.TempDir == "" {
		opts.TempDir = "/tmp/trailshed"
	}

	log := zap.L().With(
		zap.String("component", "shape.loader"),
		zap.String("layer", BlockGroups.Name),
		zap.Int("year", opts.Year),
	)

	states := opts.States
	if len(states) == 0 {
		states = AllStateAbbrs()
	}

	// Pre-validate all state abbreviations before starting any work.
	for _, stateAbbr := range states {
		if _, ok := FIPSCodes[stateAbbr]; !ok {
			return eris.Errorf("shape: unknown state %q", stateAbbr)
		}
	}

	dl := NewDownloader(opts.RatePerSec)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, stateAbbr := range states {
		fips := FIPSCodes[stateAbbr]
		g.Go(func() error {
			return loadStateBlockGroups(gCtx, pool, dl, stateAbbr, fips, opts)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if !opts.DryRun {
		transformed, err := TransformToWorking(ctx, pool, BlockGroups, opts.SRID)
		if err != nil {
			return err
		}
		log.Info("block groups reprojected", zap.Int64("rows", transformed))
	}

	log.Info("block-group load complete", zap.Int("states", len(states)))
	return nil
}

// loadStateBlockGroups downloads, parses, and loads one state's BG shapefile.
func loadStateBlockGroups(ctx context.Context, pool db.Pool, dl *Downloader, stateAbbr, stateFIPS string, opts LoadOptions) error {
	log := zap.L().With(
		zap.String("component", "shape.loader"),
		zap.String("layer", BlockGroups.Name),
		zap.String("state", stateAbbr),
	)

	if opts.Incremental {
		loaded, err := IsLoaded(ctx, pool, BlockGroups.Name, stateFIPS, opts.Year)
		if err != nil {
			return err
		}
		if loaded {
			log.Debug("already loaded, skipping")
			return nil
		}
	}

	start := time.Now()

	url := BlockGroupURL(opts.Year, stateFIPS)
	destDir := fmt.Sprintf("%s/%s/bg", opts.TempDir, stateFIPS)
	shpPath, err := dl.Fetch(ctx, url, destDir)
	if err != nil {
		return eris.Wrapf(err, "shape: download block groups for %s", stateAbbr)
	}

	log.Info("shapefile downloaded", zap.String("path", shpPath))

	rows, err := ParseShapefile(shpPath, BlockGroups)
	if err != nil {
		return eris.Wrapf(err, "shape: parse block groups for %s", stateAbbr)
	}

	log.Info("shapefile parsed", zap.Int("rows", len(rows)))

	if opts.DryRun {
		log.Info("dry run, skipping load", zap.Int("rows", len(rows)))
		return nil
	}

	// Replace this state's rows before reload.
	if _, err := pool.Exec(ctx,
		"DELETE FROM trail.block_groups WHERE statefp = $1", stateFIPS,
	); err != nil {
		return eris.Wrapf(err, "shape: clear block groups for %s", stateAbbr)
	}

	loaded, err := BulkLoad(ctx, pool, BlockGroups, rows, opts.BatchSize)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	if err := RecordLoad(ctx, pool, BlockGroups.Name, stateFIPS, opts.Year, int(loaded), int(duration.Milliseconds())); err != nil {
		log.Warn("failed to record load status", zap.Error(err))
	}

	log.Info("state block groups loaded",
		zap.Int64("rows", loaded),
		zap.Duration("duration", duration),
	)
	return nil
}

// NormalizeStates uppercases and trims a comma-separated state list.
func NormalizeStates(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
