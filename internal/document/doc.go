// Package document defines the page-rendering and editing capability the
// marker pipeline runs against, and provides a PDF implementation of it.
//
// The pipeline only talks to the Document and Page interfaces, so any backend
// able to rasterize a page, paint redactions and replace page content can be
// substituted without touching detection or clustering.
//
// # Coordinate Systems
//
// Two systems meet here:
//   - Raster (render) space: pixels, origin top-left, Y grows downward.
//   - Page space: document units (points for PDF), origin bottom-left, Y grows
//     upward.
//
// RasterToPage converts a raster bounding box into a page-space Rect,
// accounting for the vertical flip.
//
// # PDF Backend
//
// OpenPDF shells out to poppler: pdfinfo for page count and page sizes,
// pdftoppm for rasterization. Edits are recorded per page and only applied
// when Bytes is called; a document with no committed edits serializes to its
// original bytes unchanged. Edited documents are rebuilt with gofpdf, with
// page content imported through gofpdi. Redaction removes the drawing
// operations inside each region from the imported content stream and then
// paints the region with its fill color. URI links are carried over; other
// annotations, outlines and form fields are not.
package document
