package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/slidemarks/internal/detection"
)

// Write encodes b as indented JSON.
func Write(w io.Writer, b *Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	return nil
}

// WriteFile writes b to path. The bundle is written to a temporary file in
// the same directory and renamed into place, so a failed run never leaves a
// partial bundle behind.
func WriteFile(path string, b *Bundle) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bundle-*")
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// rawBundle accepts both the current and the legacy field names.
type rawBundle struct {
	Version     json.RawMessage         `json:"version"`
	PDF         *string                 `json:"pdf"`
	PDFData     *string                 `json:"pdfData"`
	Annotations *[]detection.Annotation `json:"annotations"`
	Settings    *Settings               `json:"settings"`
}

// Read decodes a bundle.
//
// The document may be stored under "pdf" or the legacy "pdfData" key, and
// the version may be a number or a numeric string. An annotations array is
// required. Missing settings are filled with DefaultSettings. Every failure
// wraps ErrInvalid.
func Read(r io.Reader) (*Bundle, error) {
	var raw rawBundle
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	b := &Bundle{Version: Version, Settings: DefaultSettings()}

	if len(raw.Version) > 0 {
		v, err := parseVersion(raw.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		b.Version = v
	}

	switch {
	case raw.PDF != nil:
		b.PDF = *raw.PDF
	case raw.PDFData != nil:
		b.PDF = *raw.PDFData
	default:
		return nil, fmt.Errorf("%w: missing pdf", ErrInvalid)
	}
	if _, err := b.Document(); err != nil {
		return nil, err
	}

	if raw.Annotations == nil {
		return nil, fmt.Errorf("%w: missing annotations", ErrInvalid)
	}
	b.Annotations = *raw.Annotations
	if b.Annotations == nil {
		b.Annotations = []detection.Annotation{}
	}

	if raw.Settings != nil {
		b.Settings = *raw.Settings
		if b.Settings.DeletedPages == nil {
			b.Settings.DeletedPages = []int{}
		}
	}
	return b, nil
}

// ReadFile reads a bundle from path.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseVersion(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("bad version %s", raw)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad version %q", s)
	}
	return n, nil
}
