// Package render rasterizes animation frames with the gg software renderer
// and encodes them as PNG stills or animated GIFs.
//
// The canvas maps the sampling bounds onto the image with y growing upward.
// Previously visited levels are stroked in translucent blue, the current level
// in opaque blue, and a frame without a contour gets a red cross.
package render
