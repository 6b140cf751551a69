// Package layout computes hierarchical 2-D positions for a converted syntax
// tree.
//
// # Overview
//
// [Hierarchy] places the root at the top centre and its descendants on
// successive rows below it. Horizontal positions blend two placements:
//
//   - root-driven: each node splits its horizontal slot evenly between its
//     children, so wide subtrees near the top get the same room as narrow ones
//   - leaf-driven: leaves are spaced evenly from left to right and every
//     parent sits midway between its leftmost and rightmost child
//
// The blend is controlled by [WithLeafFactor]; 0.5 weights both equally.
// After blending, x is rescaled so the rightmost node sits at the layout
// width.
//
// # Validation
//
// The graph is loaded into a gonum directed graph before layout. Input with a
// cycle or a node with more than one parent fails with [ErrNotTree]. Nodes
// not reachable from the root receive no position.
package layout
