// Package camera implements a camera that follows a subject, orbiting it at
// a distance or looking out from its head.
package camera

import (
	"github.com/chewxy/math32"

	"terrain-renderer/math"
)

// Input is the polled per-frame input state.
type Input interface {
	// WheelDelta is the scroll since the last frame, 120 per notch.
	WheelDelta() float32
	MouseDX() float32
	// MouseDY is positive when the mouse moved up.
	MouseDY() float32
	IsKeyDown(key int) bool
}

// Subject is a snapshot of what the camera follows.
type Subject struct {
	Position    math.Vec3
	RotY        float32
	FirstPerson bool
	// TerrainFloorPitch is the lowest orbit pitch allowed.
	TerrainFloorPitch float32
}

type Mode int

const (
	Orbit Mode = iota
	FirstPerson
)

func (m Mode) String() string {
	if m == FirstPerson {
		return "first-person"
	}
	return "orbit"
}

type Config struct {
	ZoomSensitivity  float32 `yaml:"zoom_sensitivity"`
	PitchSensitivity float32 `yaml:"pitch_sensitivity"`
	AngleSensitivity float32 `yaml:"angle_sensitivity"`

	// PitchKey must be held for vertical mouse motion to change pitch in
	// orbit mode; OrbitKey for horizontal motion to orbit the subject.
	PitchKey int `yaml:"pitch_key"`
	OrbitKey int `yaml:"orbit_key"`

	MinDistance         float32 `yaml:"min_distance"`
	MaxDistance         float32 `yaml:"max_distance"`
	MaxOrbitPitch       float32 `yaml:"max_orbit_pitch"`
	MinFirstPersonPitch float32 `yaml:"min_first_person_pitch"`
	MaxFirstPersonPitch float32 `yaml:"max_first_person_pitch"`

	// EyeOffset raises the orbit focal point from the subject's feet.
	EyeOffset  float32 `yaml:"eye_offset"`
	HeadHeight float32 `yaml:"head_height"`

	InitialDistance float32 `yaml:"initial_distance"`
	InitialPitch    float32 `yaml:"initial_pitch"`
}

func DefaultConfig(pitchKey, orbitKey int) Config {
	return Config{
		ZoomSensitivity:     0.1,
		PitchSensitivity:    0.1,
		AngleSensitivity:    0.3,
		PitchKey:            pitchKey,
		OrbitKey:            orbitKey,
		MinDistance:         25,
		MaxDistance:         100,
		MaxOrbitPitch:       50,
		MinFirstPersonPitch: -20,
		MaxFirstPersonPitch: 45,
		EyeOffset:           6,
		HeadHeight:          8,
		InitialDistance:     50,
		InitialPitch:        20,
	}
}

// Camera holds the view state derived each frame from its subject and input.
type Camera struct {
	cfg Config

	position         math.Vec3
	pitch, yaw, roll float32

	distance           float32
	angleAroundSubject float32
	mode               Mode
}

var _ math.Viewer = (*Camera)(nil)

func New(cfg Config) *Camera {
	return &Camera{
		cfg:      cfg,
		pitch:    cfg.InitialPitch,
		distance: cfg.InitialDistance,
	}
}

func (c *Camera) Position() math.Vec3         { return c.position }
func (c *Camera) Pitch() float32              { return c.pitch }
func (c *Camera) Yaw() float32                { return c.yaw }
func (c *Camera) Roll() float32               { return c.roll }
func (c *Camera) Distance() float32           { return c.distance }
func (c *Camera) AngleAroundSubject() float32 { return c.angleAroundSubject }
func (c *Camera) Mode() Mode                  { return c.mode }

// Move applies one frame of input and places the camera relative to s.
// Every update is clamped before it is used.
func (c *Camera) Move(in Input, s Subject) {
	c.mode = Orbit
	if s.FirstPerson {
		c.mode = FirstPerson
	}

	c.distance -= in.WheelDelta() * c.cfg.ZoomSensitivity
	c.distance = math.Clamp(c.distance, c.cfg.MinDistance, c.cfg.MaxDistance)

	switch c.mode {
	case FirstPerson:
		if in.IsKeyDown(c.cfg.PitchKey) {
			c.pitch -= in.MouseDY() * c.cfg.PitchSensitivity
		}
		c.pitch = math.Clamp(c.pitch, c.cfg.MinFirstPersonPitch, c.cfg.MaxFirstPersonPitch)

		c.position = s.Position.Add(math.NewVec3(0, c.cfg.HeadHeight, 0))
		c.yaw = 180 - s.RotY

	default:
		if in.IsKeyDown(c.cfg.PitchKey) {
			c.pitch -= in.MouseDY() * c.cfg.PitchSensitivity
		}
		c.pitch = math.Clamp(c.pitch, s.TerrainFloorPitch, c.cfg.MaxOrbitPitch)
		if in.IsKeyDown(c.cfg.OrbitKey) {
			c.angleAroundSubject -= in.MouseDX() * c.cfg.AngleSensitivity
		}

		pitch := math.DegToRad(c.pitch)
		horizontal := c.distance * math32.Cos(pitch)
		vertical := c.distance * math32.Sin(pitch)

		theta := s.RotY + c.angleAroundSubject
		rad := math.DegToRad(theta)
		c.position = math.Vec3{
			X: s.Position.X - horizontal*math32.Sin(rad),
			Y: s.Position.Y + vertical + c.cfg.EyeOffset,
			Z: s.Position.Z - horizontal*math32.Cos(rad),
		}
		c.yaw = 180 - theta
	}
}
