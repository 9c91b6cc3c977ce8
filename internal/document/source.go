package document

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// link is a URI link annotation carried over from the source document.
type link struct {
	rect Rect
	uri  string
}

// sourcePage is what a rebuild needs to know about a page of the source
// file beyond its size.
type sourcePage struct {
	originX, originY float64
	fonts            map[string]*fontMetrics
	links            []link
}

// readSource reads font metrics, the media box origin and link annotations
// for every page of the PDF at path.
func readSource(path string, pages int) (out []sourcePage, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}

	// The reader panics on malformed objects.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to read source: %v", r)
		}
	}()

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	out = make([]sourcePage, pages)
	for i := range out {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		if box := inherited(page.V, "MediaBox"); box.Len() == 4 {
			out[i].originX = box.Index(0).Float64()
			out[i].originY = box.Index(1).Float64()
		}
		out[i].fonts = pageFonts(page)
		out[i].links = pageLinks(page.V.Key("Annots"))
	}
	return out, nil
}

func inherited(v pdf.Value, key string) pdf.Value {
	for ; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}

func pageFonts(page pdf.Page) map[string]*fontMetrics {
	fonts := make(map[string]*fontMetrics)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		m := &fontMetrics{}
		if font.V.Key("Subtype").Name() == "Type0" {
			m.composite = true
			m.missing = 1000
			if dw := font.V.Key("DescendantFonts").Index(0).Key("DW"); !dw.IsNull() {
				m.missing = dw.Float64()
			}
		} else {
			m.firstChar = font.FirstChar()
			m.widths = font.Widths()
			m.missing = font.V.Key("FontDescriptor").Key("MissingWidth").Float64()
		}
		fonts[name] = m
	}
	return fonts
}

func pageLinks(annots pdf.Value) []link {
	var links []link
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}
		action := a.Key("A")
		if action.Key("S").Name() != "URI" {
			continue
		}
		rect := a.Key("Rect")
		if rect.Len() != 4 {
			continue
		}
		r := Rect{
			X0: rect.Index(0).Float64(),
			Y0: rect.Index(1).Float64(),
			X1: rect.Index(2).Float64(),
			Y1: rect.Index(3).Float64(),
		}
		if r.X0 > r.X1 {
			r.X0, r.X1 = r.X1, r.X0
		}
		if r.Y0 > r.Y1 {
			r.Y0, r.Y1 = r.Y1, r.Y0
		}
		links = append(links, link{rect: r, uri: action.Key("URI").RawString()})
	}
	return links
}
