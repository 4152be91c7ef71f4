// Package acquire ensures a local decompressed metadata file exists for a
// catalog type, downloading and extracting the archive on demand.
package acquire

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/shrihari-lab/chipatlas/internal/catalog"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
	"github.com/shrihari-lab/chipatlas/pkg/safeio"
)

// ErrFetchFailed reports a download or extraction failure. Callers treat it
// as "no data", never as a crash.
var ErrFetchFailed = errors.New("fetch failed")

// DefaultTimeout bounds the archive download.
const DefaultTimeout = 60 * time.Second

// Acquirer downloads and caches metadata dumps under a base directory.
type Acquirer struct {
	baseDir string
	fetcher HTTPFetcher
}

// New creates an Acquirer with a production HTTP client using the given
// timeout (DefaultTimeout when zero).
func New(baseDir string, timeout time.Duration) *Acquirer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithFetcher(baseDir, NewRealHTTPFetcher(&http.Client{Timeout: timeout}))
}

// NewWithFetcher creates an Acquirer with an injectable HTTP fetcher for testing.
func NewWithFetcher(baseDir string, fetcher HTTPFetcher) *Acquirer {
	return &Acquirer{baseDir: baseDir, fetcher: fetcher}
}

// BaseDir returns the cache directory the acquirer writes into.
func (a *Acquirer) BaseDir() string {
	return a.baseDir
}

// EnsureLocalFile returns the path of the decompressed table for a metadata
// type, downloading and extracting the archive when no candidate file exists.
// Safe to call repeatedly; a cached file short-circuits all network work.
func (a *Acquirer) EnsureLocalFile(metadataType string) (string, error) {
	spec, err := catalog.Lookup(metadataType)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: create cache directory: %v", ErrFetchFailed, err)
	}

	if path, ok := a.findLocal(spec); ok {
		logger.Debug("found local file", logger.String("type", metadataType), logger.String("path", path))
		return path, nil
	}

	logger.Info("downloading metadata archive",
		logger.String("type", metadataType),
		logger.String("url", spec.ArchiveURL))

	archivePath, err := a.download(spec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		if err := os.Remove(archivePath); err != nil {
			logger.Debug("failed to remove downloaded archive", logger.Err(err))
		}
	}()

	if err := extractZip(archivePath, a.baseDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	logger.Info("extracted metadata archive",
		logger.String("type", metadataType),
		logger.String("dir", a.baseDir))

	if path, ok := a.findLocal(spec); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: no expected file found after extracting %s", ErrFetchFailed, metadataType)
}

// findLocal returns the first existing candidate filename for the spec.
func (a *Acquirer) findLocal(spec *catalog.Spec) (string, bool) {
	for _, name := range spec.Filenames {
		path := filepath.Join(a.baseDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// download fetches the archive to a temp file inside the cache directory and
// renames it into place once complete.
func (a *Acquirer) download(spec *catalog.Spec) (string, error) {
	resp, err := a.fetcher.Get(spec.ArchiveURL)
	if err != nil {
		return "", fmt.Errorf("failed to download: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("failed to close response body", logger.Err(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status: %s", resp.Status)
	}

	archivePath := filepath.Join(a.baseDir, filepath.Base(spec.ArchiveURL))
	tmpFile := archivePath + ".tmp"
	out, err := os.Create(tmpFile) // #nosec G304 -- path derived from the fixed catalog
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to write file: %v", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to close file: %v", err)
	}

	if err := os.Rename(tmpFile, archivePath); err != nil {
		_ = os.Remove(tmpFile)
		return "", fmt.Errorf("failed to move file: %v", err)
	}

	return archivePath, nil
}

// extractZip extracts every member of the archive into targetDir, rejecting
// member names that would escape it.
func extractZip(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %v", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Debug("failed to close zip reader", logger.Err(err))
		}
	}()

	for _, f := range r.File {
		if err := extractMember(f, targetDir); err != nil {
			return err
		}
	}
	return nil
}

func extractMember(f *zip.File, targetDir string) error {
	dest, err := safeio.SafeJoin(targetDir, f.Name)
	if err != nil {
		return fmt.Errorf("unsafe archive member %q: %v", f.Name, err)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o750)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %q: %v", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in zip: %v", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logger.Debug("failed to close zip member", logger.Err(err))
		}
	}()

	out, err := os.Create(dest) // #nosec G304 -- dest verified by SafeJoin
	if err != nil {
		return fmt.Errorf("failed to create output file: %v", err)
	}

	if _, err := io.Copy(out, rc); err != nil { // #nosec G110 -- archive comes from the fixed catalog source
		_ = out.Close()
		return fmt.Errorf("failed to extract file: %v", err)
	}
	return out.Close()
}
