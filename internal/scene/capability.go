package scene

import "sync"

// Decoder is the scene-loader capability: it turns a raw model payload into a
// renderable graph. Implementations do not mutate the payload.
type Decoder interface {
	Decode(payload []byte) (*Graph, error)
}

// Renderer is the drawing capability consumed by the render loop. The
// manager guarantees Render observes either the fully-old or fully-new scene,
// never a partial swap.
type Renderer interface {
	SetSize(width, height int)
	Render(root *Node, camera *Camera)
}

// CountingRenderer records render calls and sizes. It is the default
// headless renderer and the test double for render-loop behavior.
type CountingRenderer struct {
	mu     sync.Mutex
	frames int
	width  int
	height int
}

func (r *CountingRenderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = width
	r.height = height
}

func (r *CountingRenderer) Render(*Node, *Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
}

// Frames returns the number of Render calls observed.
func (r *CountingRenderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Size returns the most recent viewport size.
func (r *CountingRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}
