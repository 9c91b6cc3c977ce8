// Package bundle builds and reads annotation bundles.
//
// A bundle is a single JSON document carrying the PDF itself (base64), the
// identified marker annotations and a fixed block of viewer settings:
//
//	{
//	  "version": 1,
//	  "pdf": "JVBERi0xLjcK...",
//	  "annotations": [{"id": "SLIDE-001", "page": 1, "x": 0.125, "y": 0.1125}],
//	  "settings": {"markerSize": 40, "zoom": 1.0, "deletedPages": []}
//	}
package bundle

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/slidemarks/internal/detection"
)

// Version is the bundle format version written by Build.
const Version = 1

// Extension is the file extension of bundle files.
const Extension = ".pdfannotations"

// ErrInvalid is wrapped by every failure to decode a bundle.
var ErrInvalid = errors.New("invalid bundle")

// Bundle is the serialized result of one run.
type Bundle struct {
	Version     int                    `json:"version"`
	PDF         string                 `json:"pdf"`
	Annotations []detection.Annotation `json:"annotations"`
	Settings    Settings               `json:"settings"`
}

// Settings is the viewer configuration stored alongside the annotations.
type Settings struct {
	MarkerSize   int     `json:"markerSize"`
	Zoom         float64 `json:"zoom"`
	DeletedPages []int   `json:"deletedPages"`
}

// MarshalJSON writes a whole zoom as "1.0" rather than "1", matching bundles
// written by the viewer. A nil DeletedPages is written as an empty list.
func (s Settings) MarshalJSON() ([]byte, error) {
	deleted := s.DeletedPages
	if deleted == nil {
		deleted = []int{}
	}
	zoom := strconv.FormatFloat(s.Zoom, 'f', -1, 64)
	if !strings.Contains(zoom, ".") {
		zoom += ".0"
	}
	return json.Marshal(struct {
		MarkerSize   int             `json:"markerSize"`
		Zoom         json.RawMessage `json:"zoom"`
		DeletedPages []int           `json:"deletedPages"`
	}{s.MarkerSize, json.RawMessage(zoom), deleted})
}

// DefaultSettings returns the settings written into every new bundle.
func DefaultSettings() Settings {
	return Settings{MarkerSize: 40, Zoom: 1.0, DeletedPages: []int{}}
}

// Build assembles a bundle from document bytes and sequenced annotations.
// A nil annotations slice is stored as an empty list.
func Build(pdf []byte, annotations []detection.Annotation) *Bundle {
	if annotations == nil {
		annotations = []detection.Annotation{}
	}
	return &Bundle{
		Version:     Version,
		PDF:         base64.StdEncoding.EncodeToString(pdf),
		Annotations: annotations,
		Settings:    DefaultSettings(),
	}
}

// Document decodes the embedded PDF bytes.
func (b *Bundle) Document() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b.PDF)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf is not base64: %w", ErrInvalid, err)
	}
	return data, nil
}

// Pages returns the distinct annotated page numbers in ascending order.
func (b *Bundle) Pages() []int {
	pages := make([]int, 0)
	seen := make(map[int]bool)
	for _, a := range b.Annotations {
		if !seen[a.Page] {
			seen[a.Page] = true
			pages = append(pages, a.Page)
		}
	}
	sort.Ints(pages)
	return pages
}

// DefaultOutputPath derives the bundle path for an input document by
// replacing its extension, or appending one when it has none.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		return input + Extension
	}
	return strings.TrimSuffix(input, ext) + Extension
}

// IsPDFPath reports whether path names a PDF file by extension.
func IsPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
