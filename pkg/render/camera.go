package render

import (
	"math"

	"github.com/taigrr/termrast/pkg/math3d"
)

// MaxPitch bounds the camera pitch in radians, roughly 80 degrees.
const MaxPitch = 1.4

// Camera is a free-flying camera. Yaw 0 looks down -Z; positive pitch looks
// up.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation in radians
	Yaw   float64
	Pitch float64

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Home is the pose Reset returns to.
	Home math3d.Vec3

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// NewCamera creates a camera at (0, 1, 3) looking down -Z with a 45 degree
// field of view.
func NewCamera() *Camera {
	home := math3d.V3(0, 1, 3)
	return &Camera{
		Position:    home,
		Home:        home,
		FOV:         math3d.Radians(45),
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPose sets position and orientation at once. Pitch is clamped to
// ±MaxPitch.
func (c *Camera) SetPose(pos math3d.Vec3, yaw, pitch float64) {
	c.Position = pos
	c.Yaw = yaw
	c.Pitch = clampPitch(pitch)
	c.viewDirty = true
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetViewport sets the aspect ratio from a pixel size.
func (c *Camera) SetViewport(width, height int) {
	c.SetAspectRatio(float64(width) / float64(max(1, height)))
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the horizontal direction the camera faces.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(-math.Sin(c.Yaw), 0, -math.Cos(c.Yaw))
}

// Right returns the horizontal direction to the camera's right.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// LookDirection returns the unit view direction, pitch included.
func (c *Camera) LookDirection() math3d.Vec3 {
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// MoveForward moves the camera along Forward (backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.Position = c.Position.Add(c.Forward().Scale(distance))
	c.viewDirty = true
}

// MoveRight strafes the camera (left if negative).
func (c *Camera) MoveRight(distance float64) {
	c.Position = c.Position.Add(c.Right().Scale(distance))
	c.viewDirty = true
}

// MoveUp moves the camera along world Y.
func (c *Camera) MoveUp(distance float64) {
	c.Position.Y += distance
	c.viewDirty = true
}

// Rotate turns the camera. Pitch is clamped to ±MaxPitch.
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Yaw += deltaYaw
	c.Pitch = clampPitch(c.Pitch + deltaPitch)
	c.viewDirty = true
}

// Reset returns the camera to Home, looking down -Z.
func (c *Camera) Reset() {
	c.SetPose(c.Home, 0, 0)
}

func clampPitch(p float64) float64 {
	return math.Max(-MaxPitch, math.Min(MaxPitch, p))
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		target := c.Position.Add(c.LookDirection())
		c.viewMatrix = math3d.LookAt(c.Position, target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
