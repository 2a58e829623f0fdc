package entities

import (
	"github.com/chewxy/math32"

	"terrain-renderer/camera"
	"terrain-renderer/math"
	"terrain-renderer/models"
)

const (
	RunSpeed  float32 = 20  // units per second
	TurnSpeed float32 = 160 // degrees per second
)

// Keys is the polled keyboard state.
type Keys interface {
	IsKeyDown(key int) bool
}

// Ground reports terrain elevation under a world position.
type Ground interface {
	HeightAt(worldX, worldZ float32) float32
}

// Controls maps player actions to key codes.
type Controls struct {
	Forward, Backward   int
	TurnLeft, TurnRight int
	ToggleView          int
}

// Player is an entity driven by the keyboard that stays on the ground.
type Player struct {
	Entity

	Controls Controls
	// FloorPitch is the lowest orbit pitch the camera may take while
	// following this player.
	FloorPitch float32

	firstPerson bool
	toggleHeld  bool
}

func NewPlayer(model *models.TexturedModel, position math.Vec3, controls Controls) *Player {
	return &Player{
		Entity:   Entity{Model: model, Position: position, Scale: 1},
		Controls: controls,
	}
}

func (p *Player) FirstPerson() bool { return p.firstPerson }

// Move advances the player by dt seconds of keyboard input and snaps it
// onto ground, which may be nil.
func (p *Player) Move(keys Keys, dt float32, ground Ground) {
	var speed, turn float32
	switch {
	case keys.IsKeyDown(p.Controls.Forward):
		speed = RunSpeed
	case keys.IsKeyDown(p.Controls.Backward):
		speed = -RunSpeed
	}
	switch {
	case keys.IsKeyDown(p.Controls.TurnRight):
		turn = -TurnSpeed
	case keys.IsKeyDown(p.Controls.TurnLeft):
		turn = TurnSpeed
	}

	down := keys.IsKeyDown(p.Controls.ToggleView)
	if down && !p.toggleHeld {
		p.firstPerson = !p.firstPerson
	}
	p.toggleHeld = down

	p.IncreaseRotation(0, turn*dt, 0)
	distance := speed * dt
	rad := math.DegToRad(p.RotY)
	p.IncreasePosition(distance*math32.Sin(rad), 0, distance*math32.Cos(rad))

	if ground != nil {
		p.Position.Y = ground.HeightAt(p.Position.X, p.Position.Z)
	}
}

// Subject is the state the camera follows.
func (p *Player) Subject() camera.Subject {
	return camera.Subject{
		Position:          p.Position,
		RotY:              p.RotY,
		FirstPerson:       p.firstPerson,
		TerrainFloorPitch: p.FloorPitch,
	}
}
