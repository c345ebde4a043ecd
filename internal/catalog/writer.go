package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Encode writes cat as an indented JSON array that Decode reads back identically.
func Encode(w io.Writer, cat domain.Catalog) error {
	if cat == nil {
		cat = domain.Catalog{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cat); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// Save writes cat to path via a temporary file and rename, so readers never see
// a partially written catalog.
func Save(path string, cat domain.Catalog) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, cat); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename catalog: %w", err)
	}
	return nil
}
