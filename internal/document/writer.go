package document

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"github.com/phpdave11/gofpdi"
)

// rebuild writes a new PDF with every committed edit applied.
//
// Pages keep their original size and URI links. A re-imaged page contains
// only its image. Every other page imports the original content as a
// template; on a redacted page the template's content stream is filtered
// through redactContent before the opaque fill rectangles are painted on top.
func (d *PDF) rebuild() (out []byte, err error) {
	// gofpdi panics on unreadable input.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to rebuild document: %v", r)
		}
	}()

	source, err := readSource(d.source, len(d.pages))
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	importer := gofpdi.NewImporter()
	importer.SetSourceFile(d.source)
	templates := make(map[int]int)
	for _, p := range d.pages {
		if p.image == nil {
			templates[p.number] = importer.ImportPage(p.number, "/MediaBox")
		}
	}
	if len(templates) > 0 {
		names := importer.PutFormXobjectsUnordered()
		objects := importer.GetImportedObjectsUnordered()
		for _, p := range d.pages {
			if p.image != nil || len(p.applied) == 0 {
				continue
			}
			name, _, _, _, _ := importer.UseTemplate(templates[p.number], 0, 0, p.rect.Width(), p.rect.Height())
			hash, ok := names[name]
			if !ok {
				return nil, fmt.Errorf("no template for page %d", p.number)
			}
			src := source[p.number-1]
			rects := make([]Rect, len(p.applied))
			for i, rd := range p.applied {
				rects[i] = rd.rect.offset(src.originX, src.originY)
			}
			filtered, err := redactTemplate(objects[hash], rects, src.fonts)
			if err != nil {
				return nil, fmt.Errorf("failed to redact page %d: %w", p.number, err)
			}
			objects[hash] = filtered
		}
		pdf.ImportTemplates(names)
		pdf.ImportObjects(objects)
		pdf.ImportObjPos(importer.GetImportedObjHashPos())
	}

	for _, p := range d.pages {
		w, h := p.rect.Width(), p.rect.Height()
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})

		if p.image != nil {
			name := fmt.Sprintf("page-%d", p.number)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.image))
			r := p.imageRect
			pdf.ImageOptions(name, r.X0, h-r.Y1, r.Width(), r.Height(), false, opts, 0, "")
		} else {
			pdf.UseImportedTemplate(importer.UseTemplate(templates[p.number], 0, 0, w, h))
			for _, rd := range p.applied {
				r, g, b := rgb8(rd.fill)
				pdf.SetFillColor(r, g, b)
				// gofpdf measures y from the top edge
				pdf.Rect(rd.rect.X0, h-rd.rect.Y1, rd.rect.Width(), rd.rect.Height(), "F")
			}
		}

		src := source[p.number-1]
		for _, l := range src.links {
			r := l.rect.offset(-src.originX, -src.originY)
			pdf.LinkString(r.X0, h-r.Y1, r.Width(), r.Height(), l.uri)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}

// redactTemplate filters the content stream of a form XObject written by
// gofpdi. The stream is zlib compressed and follows a "/Length N >>" header;
// only the length and the data change, so object references recorded by
// position in the header stay valid.
func redactTemplate(obj []byte, rects []Rect, fonts map[string]*fontMetrics) ([]byte, error) {
	header := bytes.Index(obj, []byte(">>\nstream\n"))
	if header < 0 {
		return nil, errors.New("template has no stream")
	}
	lengthAt := bytes.LastIndex(obj[:header], []byte("/Length "))
	dataStart := header + len(">>\nstream\n")
	dataEnd := bytes.LastIndex(obj, []byte("\nendstream"))
	if lengthAt < 0 || dataEnd < dataStart {
		return nil, errors.New("malformed template stream")
	}

	zr, err := zlib.NewReader(bytes.NewReader(obj[dataStart:dataEnd]))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate template: %w", err)
	}
	content, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate template: %w", err)
	}

	filtered, err := redactContent(content, rects, fonts)
	if err != nil {
		return nil, err
	}
	var data bytes.Buffer
	zw := zlib.NewWriter(&data)
	if _, err := zw.Write(filtered); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(obj[:lengthAt])
	fmt.Fprintf(&out, "/Length %d >>\nstream\n", data.Len())
	out.Write(data.Bytes())
	out.Write(obj[dataEnd:])
	return out.Bytes(), nil
}

// renderReplacement rasterizes a re-imaged page without going through
// poppler: the stored PNG is scaled into its rectangle on a white canvas.
func renderReplacement(png []byte, placed, page Rect, zoom float64) (image.Image, error) {
	src, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}

	width := int(math.Round(page.Width() * zoom))
	height := int(math.Round(page.Height() * zoom))
	canvas := imaging.New(width, height, color.White)

	w := int(math.Round(placed.Width() * zoom))
	h := int(math.Round(placed.Height() * zoom))
	if w <= 0 || h <= 0 {
		return canvas, nil
	}
	scaled := imaging.Resize(src, w, h, imaging.Lanczos)
	x := int(math.Round(placed.X0 * zoom))
	y := int(math.Round((page.Height() - placed.Y1) * zoom))
	return imaging.Paste(canvas, scaled, image.Pt(x, y)), nil
}

func rgb8(c color.Color) (int, int, int) {
	if c == nil {
		return 255, 255, 255
	}
	r, g, b, _ := c.RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}
