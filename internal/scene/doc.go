// Package scene owns the renderable model state: the active scene graph, the
// camera and navigation controls, and the render loop.
//
// The Manager replaces the displayed model wholesale on every load and derives
// all camera-framing values from the model's axis-aligned bounding box. The
// clip planes and the navigation distance limit scale linearly with the box
// diagonal: near is d/100, far is d*100, and the maximum navigation distance
// is d*10. Model decoding is delegated to the Decoder capability and drawing
// to the Renderer capability; this package never touches geometry buffers.
package scene
