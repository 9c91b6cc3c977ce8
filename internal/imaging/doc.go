// Package imaging provides the raster side of marker detection.
//
// This package classifies rendered page pixels by color, producing a binary
// Mask, and paints masked pixels out of a raster when markers are removed by
// overpainting. All operations work with standard Go image.Image types and use
// a coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Color Representation
//
// Hue, saturation and value are expressed on the 8-bit scale used by common
// computer-vision tooling:
//   - H: 0-180 (degrees on the color wheel divided by two)
//   - S: 0-255
//   - V: 0-255
//
// Markers are magenta/purple, which on this scale sits roughly between 140
// and 170. See MagentaRanges for the reference bands.
//
// # Masks
//
// A Mask holds exactly one boolean per pixel of the raster it was derived
// from. No smoothing or morphology is applied: isolated noisy pixels are kept
// and left to the size filter in the detection package.
//
// # Error Handling
//
// Classification never fails. Functions that touch the filesystem or encode
// images return wrapped errors.
package imaging
