package scene

import "math"

// Camera is a perspective camera framing the active model.
type Camera struct {
	Position Vec3    `json:"position"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	FOV      float64 `json:"fov"`
	Aspect   float64 `json:"aspect"`
}

const (
	defaultFOV    = 45
	defaultNear   = 0.1
	defaultFar    = 1000
	defaultAspect = 16.0 / 10.0
)

// NewCamera returns a camera with the default projection.
func NewCamera() *Camera {
	return &Camera{FOV: defaultFOV, Near: defaultNear, Far: defaultFar, Aspect: defaultAspect}
}

// Controls models damped orbit navigation around a target point.
type Controls struct {
	Target        Vec3    `json:"target"`
	MaxDistance   float64 `json:"maxDistance"`
	DampingFactor float64 `json:"dampingFactor"`

	velocity Vec3
}

const defaultDamping = 0.05

// NewControls returns navigation controls at their defaults.
func NewControls() *Controls {
	c := &Controls{}
	c.Reset()
	return c
}

// Reset restores target, distance limit, damping, and residual motion to
// their defaults.
func (c *Controls) Reset() {
	c.Target = Vec3{}
	c.MaxDistance = math.Inf(1)
	c.DampingFactor = defaultDamping
	c.velocity = Vec3{}
}

// Impulse adds navigation motion to be damped out over subsequent frames.
func (c *Controls) Impulse(delta Vec3) {
	c.velocity = c.velocity.Add(delta)
}

// Update advances the damping by one frame and reports whether any motion
// remains to draw.
func (c *Controls) Update() bool {
	if c.velocity == (Vec3{}) {
		return false
	}
	c.Target = c.Target.Add(c.velocity.Scale(c.DampingFactor))
	c.velocity = c.velocity.Scale(1 - c.DampingFactor)
	if c.velocity.Length() < 1e-6 {
		c.velocity = Vec3{}
	}
	return true
}
