// Package detection turns marker masks into identified page positions.
//
// Detection runs in three stages:
//
//  1. Regions: external connected components of a Mask are boxed, filtered by
//     size and reduced to a normalized center (see ExtractPositions)
//  2. Clustering: positions on the same page that belong to one physical
//     marker are merged into their centroid (see Cluster)
//  3. Sequencing: clustered positions from every page are put in reading order
//     and numbered (see Sequence)
//
// Segmenter sits in front of the first stage and produces the mask by
// rendering a document page.
//
// # Coordinate System
//
// Boxes are in raster pixels with the origin at the top-left corner and Y
// increasing downward. Positions are fractions of the raster width and height
// in the same orientation, so (0.5, 0.5) is the page center at any zoom.
//
// # Clustering Caveat
//
// Clustering is greedy single-link over a (y, x) sort. It only ever compares
// against the group currently being built, so a chain of markers each closer
// than the threshold to its neighbour collapses into one position even when
// the chain's ends are far apart.
package detection
