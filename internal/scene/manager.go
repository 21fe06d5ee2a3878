package scene

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lathe/internal/logging"
	"lathe/internal/report"
)

var (
	// ErrDecode marks a payload that failed to parse into a scene.
	ErrDecode = errors.New("decode error")
	// ErrExport marks an export attempt with no payload or an active error.
	ErrExport = errors.New("export error")
)

// Frame is the camera framing derived from the active model's bounding box.
type Frame struct {
	Center   Vec3    `json:"center"`
	Size     Vec3    `json:"size"`
	Diagonal float64 `json:"diagonal"`
}

// Viewport is the drawable area derived from the window geometry.
type Viewport struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	CanvasHeight int `json:"canvasHeight"`
}

// Options configures manager construction.
type Options struct {
	FrameInterval  time.Duration
	ViewportWidth  int
	ViewportHeight int
	SelectorHeight int
}

// Manager owns the persistent scene (lights plus one model slot), the camera,
// the navigation controls, and the render loop.
type Manager struct {
	decoder  Decoder
	renderer Renderer
	errs     *report.State
	logger   *slog.Logger

	mu       sync.Mutex
	root     *Node
	camera   *Camera
	controls *Controls
	frame    Frame
	viewport Viewport

	raw        []byte
	hasPayload bool

	frameInterval  time.Duration
	selectorHeight int
	loopStarted    bool
	stop           chan struct{}
}

// NewManager builds a scene manager and applies the initial viewport layout.
// The initial Resize must happen here: the first rendered frame depends on the
// renderer size being set before any model loads.
func NewManager(decoder Decoder, renderer Renderer, errs *report.State, logger *slog.Logger, opts Options) *Manager {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	m := &Manager{
		decoder:  decoder,
		renderer: renderer,
		errs:     errs,
		logger:   logging.NewComponentLogger(logger, "scene-manager"),
		root: &Node{Name: "scene", Children: []*Node{
			{Name: "ambient-light", Light: &Light{Kind: "ambient", Intensity: 1}},
			{Name: "directional-light", Position: Vec3{X: 1, Y: 1, Z: 1}, Light: &Light{Kind: "directional", Intensity: 2}},
		}},
		camera:         NewCamera(),
		controls:       NewControls(),
		frameInterval:  opts.FrameInterval,
		selectorHeight: opts.SelectorHeight,
	}
	m.Resize(opts.ViewportWidth, opts.ViewportHeight)
	return m
}

// Load decodes the payload and replaces the displayed model. On decode
// failure the previously rendered scene is left untouched. On success the
// camera framing is derived from the new bounding box, material color maps
// are normalized to sRGB, the render loop is started if this is the first
// load, and the error state is cleared.
func (m *Manager) Load(payload []byte) error {
	graph, err := m.decoder.Decode(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if graph == nil || graph.Root == nil {
		return fmt.Errorf("%w: decoder produced no scene", ErrDecode)
	}

	m.mu.Lock()
	model := graph.Root
	model.Name = ActiveModelName
	m.root.RemoveChild(ActiveModelName)
	m.root.Children = append(m.root.Children, model)

	m.controls.Reset()

	box := graph.BoundingBox()
	center := box.Center()
	size := box.Size()
	diagonal := box.Diagonal()

	// Recentre relative to the node's current position. This is an offset,
	// not an absolute reset: loading the same node twice without a clear
	// compounds the shift.
	model.Position = model.Position.Add(model.Position.Sub(center))

	m.camera.Near = diagonal / 100
	m.camera.Far = diagonal * 100
	m.controls.MaxDistance = diagonal * 10
	m.camera.Position = center
	m.camera.Position = Vec3{X: 2 * size.X, Y: 2 * size.Y, Z: 2 * size.Z}

	for _, mat := range graph.Materials {
		normalizeMaterial(mat)
	}

	m.frame = Frame{Center: center, Size: size, Diagonal: diagonal}
	m.raw = append([]byte(nil), payload...)
	m.hasPayload = true
	m.startLoopLocked()
	m.mu.Unlock()

	m.errs.Clear()
	m.logger.Info("model loaded",
		logging.Float64("diagonal", diagonal),
		logging.Int("bytes", len(payload)),
	)
	return nil
}

// Clear removes the active model node if present. Camera, lights, and
// controls are untouched; the cached payload is dropped so export refuses
// until the next successful load.
func (m *Manager) Clear() {
	m.mu.Lock()
	removed := m.root.RemoveChild(ActiveModelName)
	m.raw = nil
	m.hasPayload = false
	m.mu.Unlock()
	if removed {
		m.logger.Info("scene cleared")
	}
}

// Export returns the most recently loaded raw payload encoded as base64. The
// encoding round-trips byte-identically to the service's terminal response.
func (m *Manager) Export() (string, error) {
	if m.errs.Active() {
		return "", fmt.Errorf("%w: error state active", ErrExport)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasPayload {
		return "", fmt.Errorf("%w: no model loaded", ErrExport)
	}
	return base64.StdEncoding.EncodeToString(m.raw), nil
}

// Resize recomputes the camera aspect and the canvas layout from the window
// geometry. The canvas takes the vertical space left by the selector, scaled
// by 0.9.
func (m *Manager) Resize(width, height int) {
	canvas := int(float64(height-m.selectorHeight) * 0.9)
	if canvas < 1 {
		canvas = 1
	}
	m.mu.Lock()
	m.viewport = Viewport{Width: width, Height: height, CanvasHeight: canvas}
	if canvas > 0 {
		m.camera.Aspect = float64(width) / float64(canvas)
	}
	m.mu.Unlock()
	m.renderer.SetSize(width, canvas)
}

// Nudge feeds navigation motion into the controls for the render loop to
// damp out.
func (m *Manager) Nudge(delta Vec3) {
	m.mu.Lock()
	m.controls.Impulse(delta)
	m.mu.Unlock()
}

// Frame returns the camera framing of the most recent load.
func (m *Manager) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// CameraState returns a copy of the current camera.
func (m *Manager) CameraState() Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.camera
}

// ControlsState returns the current navigation limits.
func (m *Manager) ControlsState() Controls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Controls{Target: m.controls.Target, MaxDistance: m.controls.MaxDistance, DampingFactor: m.controls.DampingFactor}
}

// ViewportState returns the current viewport layout.
func (m *Manager) ViewportState() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// ActiveModel returns the model node, or nil when no model is displayed.
func (m *Manager) ActiveModel() *Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root.FindChild(ActiveModelName)
}

// ModelNodeCount reports how many nodes carry the reserved model name. It is
// 0 or 1 by construction.
func (m *Manager) ModelNodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, child := range m.root.Children {
		if child.Name == ActiveModelName {
			count++
		}
	}
	return count
}

// Close stops the render loop. Safe to call when the loop never started.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

func (m *Manager) startLoopLocked() {
	if m.loopStarted {
		return
	}
	m.loopStarted = true
	m.stop = make(chan struct{})
	go m.runLoop(m.stop)
}

func (m *Manager) runLoop(stop chan struct{}) {
	ticker := time.NewTicker(m.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.renderFrame()
		}
	}
}

// renderFrame advances control damping and draws one frame. It runs inside
// the manager lock so a frame observes either the fully-old or fully-new
// scene, never a partial swap.
func (m *Manager) renderFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls.Update()
	m.renderer.Render(m.root, m.camera)
}

func normalizeMaterial(mat *Material) {
	if mat == nil {
		return
	}
	updated := false
	if mat.BaseColor != nil && mat.BaseColor.ColorSpace != ColorSpaceSRGB {
		mat.BaseColor.ColorSpace = ColorSpaceSRGB
		updated = true
	}
	if mat.Emissive != nil && mat.Emissive.ColorSpace != ColorSpaceSRGB {
		mat.Emissive.ColorSpace = ColorSpaceSRGB
		updated = true
	}
	if updated {
		mat.NeedsUpload = true
	}
}
