package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"productcatalog/pkg/models"
)

var (
	ErrCatalogNotFound = errors.New("catalog not found")
	ErrCatalogParse    = errors.New("invalid catalog json")
	ErrBackupWrite     = errors.New("backup write failed")
)

// BackupPath is the sibling path the repair backup is written to.
func BackupPath(catalogPath string) string {
	return catalogPath + ".bak"
}

// LoadFile reads and parses the catalog at path. The raw bytes are returned
// so that a later backup is a verbatim copy of what was parsed.
func LoadFile(path string) ([]models.Product, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}

	products, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return products, raw, nil
}

// Parse decodes a catalog. A corrupt document is rejected as a whole.
func Parse(raw []byte) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogParse, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Marshal encodes products as a 2-space indented JSON array.
func Marshal(products []models.Product) ([]byte, error) {
	if products == nil {
		products = []models.Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWithBackup writes original to backupPath and, only once that has
// succeeded, replaces the catalog at path with products.
func WriteWithBackup(path, backupPath string, original []byte, products []models.Product) error {
	b, err := Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	if err := writeFileAtomic(backupPath, original); err != nil {
		return fmt.Errorf("%w: %w", ErrBackupWrite, err)
	}
	if err := writeFileAtomic(path, b); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// WriteFile replaces the catalog at path without taking a backup.
func WriteFile(path string, products []models.Product) error {
	b, err := Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure catalog dir: %w", err)
	}
	if err := writeFileAtomic(path, b); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	perm := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
