package nmealog

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultArchive = "data.zip"
	DefaultDataDir = "data"
)

var ErrArchiveMissing = errors.New("archive not found")

// Expander unpacks the archive of raw logs into WorkDir/DataDir once.
type Expander struct {
	workDir string
	archive string
	dataDir string
	logger  zerolog.Logger
}

func NewExpander(workDir, archive, dataDir string, logger zerolog.Logger) *Expander {
	if archive == "" {
		archive = DefaultArchive
	}
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return &Expander{workDir: workDir, archive: archive, dataDir: dataDir, logger: logger}
}

// DataDir is the directory the logs are (or will be) extracted to.
func (e *Expander) DataDir() string {
	return filepath.Join(e.workDir, e.dataDir)
}

// Expand extracts the archive unless the data directory already exists, in
// which case it does nothing. Extraction happens in a temporary sibling
// directory that is renamed into place only once every entry is written, so
// a failed run leaves no data directory behind and the next run retries.
func (e *Expander) Expand() (bool, error) {
	target := e.DataDir()
	info, err := os.Stat(target)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", target)
		}
		e.logger.Debug().Str("dir", target).Msg("Data directory exists, skipping extraction")
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("error checking %s: %w", target, err)
	}

	archive := filepath.Join(e.workDir, e.archive)
	zr, err := zip.OpenReader(archive)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrArchiveMissing, archive)
		}
		return false, fmt.Errorf("error opening %s for reading: %w", archive, err)
	}
	defer zr.Close()

	tmp, err := os.MkdirTemp(e.workDir, "."+e.dataDir+"-partial-")
	if err != nil {
		return false, fmt.Errorf("error creating staging directory: %w", err)
	}
	if err := e.extractAll(zr, tmp); err != nil {
		os.RemoveAll(tmp)
		return false, err
	}
	if err := os.Chmod(tmp, 0o755); err != nil {
		os.RemoveAll(tmp)
		return false, err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.RemoveAll(tmp)
		return false, fmt.Errorf("error moving extracted logs into %s: %w", target, err)
	}
	e.logger.Info().Str("archive", archive).Str("dir", target).Int("entries", len(zr.File)).Msg("Extracted archive")
	return true, nil
}

func (e *Expander) extractAll(zr *zip.ReadCloser, dest string) error {
	for _, f := range zr.File {
		name, ok, err := e.entryName(f.Name)
		if err != nil {
			return fmt.Errorf("error extracting %s: %w", f.Name, err)
		}
		if !ok {
			continue
		}
		outPath := filepath.Join(dest, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, outPath); err != nil {
			return fmt.Errorf("error extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

// entryName maps an archive entry to a path relative to the data directory.
// A leading data directory component is dropped so archives built either
// from the folder or from its contents extract to the same place.
func (e *Expander) entryName(raw string) (string, bool, error) {
	name := strings.ReplaceAll(raw, `\`, "/")
	if path.IsAbs(name) {
		return "", false, fmt.Errorf("absolute path in archive")
	}
	name = path.Clean(name)
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", false, fmt.Errorf("path escapes data directory")
	}
	if name == "__MACOSX" || strings.HasPrefix(name, "__MACOSX/") {
		return "", false, nil
	}
	name = strings.TrimPrefix(name, e.dataDir+"/")
	if name == e.dataDir || name == "." {
		return "", false, nil
	}
	return name, true, nil
}

func extractFile(f *zip.File, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	w, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
