package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// OutputError reports a failure to persist fetched rows. It is kept
// distinct from fetch errors so operators can tell that the fetch
// itself succeeded.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// OutputPath returns the conventional file name for a format's rows
func OutputPath(dir, format string) string {
	return filepath.Join(dir, format+"_replay_ids.csv")
}

// WriteCSV writes the header and rows to path. The file is written to
// a temporary sibling first and renamed into place on success, so a
// failed run never leaves a truncated CSV at the final path. Zero rows
// still produce a header-only file.
func WriteCSV(path string, rows []Row) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}

	w := csv.NewWriter(f)
	w.Write(Header())
	for _, row := range rows {
		w.Write(row.AsRow())
	}
	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &OutputError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &OutputError{Path: path, Err: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &OutputError{Path: path, Err: err}
	}

	return nil
}
