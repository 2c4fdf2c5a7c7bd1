package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ademuri/tour-stats/internal/stats"
)

// Writer publishes artifacts to Path.
type Writer struct {
	Path string
	// Now stamps LastUpdated; defaults to time.Now.
	Now func() time.Time

	validate *validator.Validate
}

func NewWriter(path string) *Writer {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateOrder, Artifact{})
	return &Writer{Path: path, Now: time.Now, validate: v}
}

// Encode stamps, validates and marshals the statistics.
func (w *Writer) Encode(s *stats.TourStatistics) (Artifact, []byte, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	a := FromStatistics(s, now())
	if err := w.validate.Struct(a); err != nil {
		return Artifact{}, nil, fmt.Errorf("invalid artifact: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return Artifact{}, nil, fmt.Errorf("encoding artifact: %w", err)
	}
	return a, append(data, '\n'), nil
}

// Publish encodes the statistics and replaces the file at Path. If anything
// fails the existing file is left as it was.
func (w *Writer) Publish(s *stats.TourStatistics) (Artifact, error) {
	a, data, err := w.Encode(s)
	if err != nil {
		return Artifact{}, err
	}
	if err := writeAtomic(w.Path, data); err != nil {
		return Artifact{}, fmt.Errorf("writing %s: %w", w.Path, err)
	}
	return a, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Read loads a previously published artifact.
func Read(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &a, nil
}

func validateOrder(sl validator.StructLevel) {
	a := sl.Current().Interface().(Artifact)
	for i := 1; i < len(a.LongestSongs); i++ {
		if a.LongestSongs[i].DurationSeconds > a.LongestSongs[i-1].DurationSeconds {
			sl.ReportError(a.LongestSongs, "LongestSongs", "longestSongs", "sorted", "")
			break
		}
	}
	for i := 1; i < len(a.RarestSongs); i++ {
		if a.RarestSongs[i].Gap > a.RarestSongs[i-1].Gap {
			sl.ReportError(a.RarestSongs, "RarestSongs", "rarestSongs", "sorted", "")
			break
		}
	}
}
