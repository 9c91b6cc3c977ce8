package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
)

// PDF is a Document backed by a PDF file and the poppler command-line tools.
//
// OpenPDF copies the input into a private working directory, so the caller's
// file may change or disappear during the run without affecting the result.
// A PDF is not safe for concurrent use.
type PDF struct {
	original []byte
	source   string
	workDir  string
	pages    []*pdfPage
	dirty    bool
	closed   bool
}

// OpenPDF opens a PDF file.
//
// Returns an error wrapping ErrOpen when the file cannot be read or poppler
// cannot parse it.
func OpenPDF(ctx context.Context, path string) (*PDF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	workDir, err := os.MkdirTemp("", "slidemarks-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	source := filepath.Join(workDir, "source.pdf")
	if err := os.WriteFile(source, data, 0o600); err != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("failed to stage document: %w", err)
	}

	count, err := countPages(ctx, source)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	rects, err := pageSizes(ctx, source, count)
	if err != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	doc := &PDF{
		original: data,
		source:   source,
		workDir:  workDir,
		pages:    make([]*pdfPage, count),
	}
	for i, r := range rects {
		doc.pages[i] = &pdfPage{doc: doc, number: i + 1, rect: r}
	}
	return doc, nil
}

// PageCount returns the number of pages.
func (d *PDF) PageCount() int {
	return len(d.pages)
}

// Page returns the page at a 0-based index.
func (d *PDF) Page(index int) (Page, error) {
	if d.closed {
		return nil, errors.New("document is closed")
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range (0-%d)", index, len(d.pages)-1)
	}
	return d.pages[index], nil
}

// Bytes returns the original file contents when no edit was committed,
// otherwise the rebuilt document.
func (d *PDF) Bytes() ([]byte, error) {
	if d.closed {
		return nil, errors.New("document is closed")
	}
	if !d.dirty {
		out := make([]byte, len(d.original))
		copy(out, d.original)
		return out, nil
	}
	return d.rebuild()
}

// Close removes the working directory.
func (d *PDF) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return os.RemoveAll(d.workDir)
}

type redaction struct {
	rect Rect
	fill color.Color
}

type pdfPage struct {
	doc     *PDF
	number  int
	rect    Rect
	pending []redaction
	applied []redaction

	// image, when set, replaces all original page content.
	image     []byte
	imageRect Rect
}

func (p *pdfPage) Number() int { return p.number }

func (p *pdfPage) Rect() Rect { return p.rect }

func (p *pdfPage) Render(ctx context.Context, zoom float64) (image.Image, error) {
	if p.doc.closed {
		return nil, errors.New("document is closed")
	}
	if zoom <= 0 {
		return nil, fmt.Errorf("invalid zoom %v", zoom)
	}
	if p.image != nil {
		return renderReplacement(p.image, p.imageRect, p.rect, zoom)
	}
	if len(p.applied) > 0 {
		// Poppler only sees the original file; rebuild so the render
		// reflects committed redactions.
		return p.renderEdited(ctx, zoom)
	}
	return renderPage(ctx, p.doc.source, p.doc.workDir, p.number, zoom)
}

func (p *pdfPage) MarkForRemoval(r Rect, fill color.Color) {
	if r.Empty() {
		return
	}
	p.pending = append(p.pending, redaction{rect: r, fill: fill})
}

func (p *pdfPage) CommitRedactions() error {
	if len(p.pending) == 0 {
		return nil
	}
	p.applied = append(p.applied, p.pending...)
	p.pending = nil
	p.doc.dirty = true
	return nil
}

func (p *pdfPage) SetImage(r Rect, png []byte) error {
	if len(png) == 0 {
		return errors.New("empty page image")
	}
	if r.Empty() {
		return fmt.Errorf("invalid image rect %+v", r)
	}
	p.image = append([]byte(nil), png...)
	p.imageRect = r
	p.applied = nil
	p.pending = nil
	p.doc.dirty = true
	return nil
}

func (p *pdfPage) renderEdited(ctx context.Context, zoom float64) (image.Image, error) {
	data, err := p.doc.rebuild()
	if err != nil {
		return nil, err
	}
	edited := filepath.Join(p.doc.workDir, fmt.Sprintf("edited-%d.pdf", p.number))
	if err := os.WriteFile(edited, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage edited document: %w", err)
	}
	defer os.Remove(edited)
	return renderPage(ctx, edited, p.doc.workDir, p.number, zoom)
}
