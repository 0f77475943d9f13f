package shape

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/trailshed/internal/resilience"
)

const downloadRetries = 3

// Downloader fetches TIGER/Line ZIP files from census.gov with a shared
// rate limiter so parallel state loads stay polite.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewDownloader creates a Downloader limited to perSec requests per second.
func NewDownloader(perSec float64) *Downloader {
	if perSec <= 0 {
		perSec = 2
	}
	return &Downloader{
		client:  &http.Client{Timeout: 10 * time.Minute},
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Fetch downloads a ZIP from url into destDir, extracts it, and returns the
// path to the extracted .shp file. An existing non-empty ZIP is reused.
func (d *Downloader) Fetch(ctx context.Context, url, destDir string) (string, error) {
	log := zap.L().With(
		zap.String("component", "shape.download"),
		zap.String("url", url),
	)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "shape: create dest dir")
	}

	parts := strings.Split(url, "/")
	zipName := parts[len(parts)-1]
	zipPath := filepath.Join(destDir, zipName)

	if info, err := os.Stat(zipPath); err == nil && info.Size() > 0 {
		log.Debug("zip already exists, skipping download", zap.String("path", zipPath))
	} else {
		log.Info("downloading shapefile archive")
		if err := d.downloadFile(ctx, url, zipPath); err != nil {
			return "", eris.Wrap(err, "shape: download archive")
		}
	}

	extractDir := filepath.Join(destDir, strings.TrimSuffix(zipName, ".zip"))
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", eris.Wrap(err, "shape: create extract dir")
	}

	if err := extractZIP(zipPath, extractDir); err != nil {
		return "", eris.Wrap(err, "shape: extract ZIP")
	}

	shpPath, err := findFileByExt(extractDir, ".shp")
	if err != nil {
		return "", eris.Wrap(err, "shape: find .shp file")
	}

	return shpPath, nil
}

// downloadFile downloads a URL to a local file, retrying transient
// failures with backoff. Permanent failures (404 for a bad year or
// state) fail immediately.
func (d *Downloader) downloadFile(ctx context.Context, url, dest string) error {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = downloadRetries
	cfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("shape: download attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		if err := d.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "shape: rate limiter")
		}
		return d.tryDownload(ctx, url, dest)
	})
}

func (d *Downloader) tryDownload(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("download returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "create file")
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(f, resp.Body); err != nil {
		return eris.Wrap(err, "write file")
	}

	return nil
}

// extractZIP extracts a ZIP archive to the destination directory.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		name := filepath.Base(f.Name)
		destPath := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}

	return nil
}

// findFileByExt finds the first file with the given extension in a directory.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
