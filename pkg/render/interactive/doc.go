// Package interactive renders a scene as a standalone HTML page.
//
// The page loads vis-network from a CDN and draws every node at its layout
// position with physics disabled, so the tree keeps its shape while it is
// panned, zoomed or dragged. Node colors and labels come from the scene.
//
// The default output file is [DefaultOutput]. Because that name is fixed,
// concurrent callers that show their output must each set
// [render.Options.Output].
package interactive
