// Package gpu holds the fixed teaching catalog: the blocks of the chip layout,
// the stages of the rendering pipeline and the fact cards shown under every view.
//
// Names and descriptions are the exact strings sent to the explanation requester,
// so they must not be reworded.
package gpu
