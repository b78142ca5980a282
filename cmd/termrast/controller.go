package main

import (
	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/termrast/pkg/math3d"
	"github.com/taigrr/termrast/pkg/render"
)

// Action is something a key press asks the viewer to do.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
	ActionDown
	ActionUp
	ActionLookUp
	ActionLookDown
	ActionLookLeft
	ActionLookRight
	ActionReset
	ActionScreenshot
	ActionQuit
)

// keyActions maps key names, as understood by KeyPressEvent.MatchString, to
// actions. Checked in order.
var keyActions = []struct {
	keys   []string
	action Action
}{
	{[]string{"escape", "ctrl+c"}, ActionQuit},
	{[]string{"w", "W"}, ActionForward},
	{[]string{"s", "S"}, ActionBack},
	{[]string{"a", "A"}, ActionLeft},
	{[]string{"d", "D"}, ActionRight},
	{[]string{"q", "Q"}, ActionDown},
	{[]string{"e", "E"}, ActionUp},
	{[]string{"i", "I", "up"}, ActionLookUp},
	{[]string{"k", "K", "down"}, ActionLookDown},
	{[]string{"j", "J", "left"}, ActionLookLeft},
	{[]string{"l", "L", "right"}, ActionLookRight},
	{[]string{"r", "R"}, ActionReset},
	{[]string{"p", "P"}, ActionScreenshot},
}

// actionFor returns the action bound to a key press.
func actionFor(ev uv.KeyPressEvent) Action {
	for _, ka := range keyActions {
		if ev.MatchString(ka.keys...) {
			return ka.action
		}
	}
	return ActionNone
}

// axis eases one value toward a target with a critically damped spring.
type axis struct {
	value    float64
	velocity float64
	spring   harmonica.Spring
}

func newAxis(fps int, v float64) axis {
	return axis{
		value: v,
		// Frequency 8 settles in a few frames; damping 1 never overshoots.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

func (a *axis) update(target float64) {
	a.value, a.velocity = a.spring.Update(a.value, a.velocity, target)
}

// Controller turns key actions into camera moves. Actions move a target
// pose immediately; Update eases the visible camera toward it once per
// frame.
type Controller struct {
	camera *render.Camera
	target *render.Camera

	moveSpeed   float64
	rotateSpeed float64

	x, y, z    axis
	yaw, pitch axis
}

// NewController creates a controller driving camera at the given frame rate.
func NewController(camera *render.Camera, fps int, moveSpeed, rotateSpeed float64) *Controller {
	target := *camera
	p := camera.Position
	return &Controller{
		camera:      camera,
		target:      &target,
		moveSpeed:   moveSpeed,
		rotateSpeed: rotateSpeed,
		x:           newAxis(fps, p.X),
		y:           newAxis(fps, p.Y),
		z:           newAxis(fps, p.Z),
		yaw:         newAxis(fps, camera.Yaw),
		pitch:       newAxis(fps, camera.Pitch),
	}
}

// Apply moves the target pose. It reports false for actions that are not
// camera moves.
func (c *Controller) Apply(a Action) bool {
	t := c.target
	switch a {
	case ActionForward:
		t.MoveForward(c.moveSpeed)
	case ActionBack:
		t.MoveForward(-c.moveSpeed)
	case ActionLeft:
		t.MoveRight(-c.moveSpeed)
	case ActionRight:
		t.MoveRight(c.moveSpeed)
	case ActionDown:
		t.MoveUp(-c.moveSpeed)
	case ActionUp:
		t.MoveUp(c.moveSpeed)
	case ActionLookUp:
		t.Rotate(c.rotateSpeed, 0)
	case ActionLookDown:
		t.Rotate(-c.rotateSpeed, 0)
	case ActionLookLeft:
		t.Rotate(0, -c.rotateSpeed)
	case ActionLookRight:
		t.Rotate(0, c.rotateSpeed)
	case ActionReset:
		t.Reset()
	default:
		return false
	}
	return true
}

// Update advances the springs one frame and poses the camera.
func (c *Controller) Update() {
	t := c.target
	c.x.update(t.Position.X)
	c.y.update(t.Position.Y)
	c.z.update(t.Position.Z)
	c.yaw.update(t.Yaw)
	c.pitch.update(t.Pitch)
	c.camera.SetPose(math3d.V3(c.x.value, c.y.value, c.z.value), c.yaw.value, c.pitch.value)
}

// Target returns the pose the camera is heading to.
func (c *Controller) Target() (pos math3d.Vec3, yaw, pitch float64) {
	return c.target.Position, c.target.Yaw, c.target.Pitch
}
