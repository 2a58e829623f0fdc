package core

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"terrain-renderer/camera"
	"terrain-renderer/entities"
	"terrain-renderer/render"
)

// Config is the demo's YAML configuration. Keys left out of the file keep
// their DefaultConfig values.
type Config struct {
	Window WindowConfig  `yaml:"window"`
	Render render.Config `yaml:"render"`
	Camera CameraConfig  `yaml:"camera"`
	Player PlayerConfig  `yaml:"player"`
	Assets AssetsConfig  `yaml:"assets"`
	Scene  SceneConfig   `yaml:"scene"`
	Log    LogConfig     `yaml:"log"`
}

type CameraConfig struct {
	ZoomSensitivity  float32 `yaml:"zoom_sensitivity"`
	PitchSensitivity float32 `yaml:"pitch_sensitivity"`
	AngleSensitivity float32 `yaml:"angle_sensitivity"`
	PitchKey         string  `yaml:"pitch_key"`
	OrbitKey         string  `yaml:"orbit_key"`
}

type PlayerConfig struct {
	Forward    string  `yaml:"forward"`
	Backward   string  `yaml:"backward"`
	TurnLeft   string  `yaml:"turn_left"`
	TurnRight  string  `yaml:"turn_right"`
	ToggleView string  `yaml:"toggle_view"`
	FloorPitch float32 `yaml:"floor_pitch"`
}

type AssetsConfig struct {
	Dir            string `yaml:"dir"`
	MaxTextureSize int    `yaml:"max_texture_size"`
	Seed           int64  `yaml:"seed"`
	// ForestSize is the side of the square the forest is scattered over.
	ForestSize  int `yaml:"forest_size"`
	ForestCount int `yaml:"forest_count"`
	// Props are extra .gltf/.glb files placed around the player start.
	Props []string `yaml:"props"`
}

// SceneConfig controls lighting. A zero DayLength keeps the light static.
type SceneConfig struct {
	DayLength float32 `yaml:"day_length"`
	StartTime float32 `yaml:"start_time"`
}

type LogConfig struct {
	Debug bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: DefaultWindowConfig(),
		Render: render.DefaultConfig(),
		Camera: CameraConfig{
			ZoomSensitivity:  0.1,
			PitchSensitivity: 0.1,
			AngleSensitivity: 0.3,
			PitchKey:         "X",
			OrbitKey:         "Z",
		},
		Player: PlayerConfig{
			Forward:    "W",
			Backward:   "S",
			TurnLeft:   "A",
			TurnRight:  "D",
			ToggleView: "F1",
		},
		Assets: AssetsConfig{
			Dir:         "res",
			Seed:        676452,
			ForestSize:  400,
			ForestCount: 100,
		},
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Scene.DayLength < 0 {
		return fmt.Errorf("scene day_length %v must not be negative", cfg.Scene.DayLength)
	}
	if cfg.Render.Near <= 0 || cfg.Render.Far <= cfg.Render.Near {
		return fmt.Errorf("render clip planes near=%v far=%v", cfg.Render.Near, cfg.Render.Far)
	}
	return nil
}

// CameraSettings resolves key names into a camera.Config.
func (c Config) CameraSettings() (camera.Config, error) {
	pitch, err := KeyByName(c.Camera.PitchKey)
	if err != nil {
		return camera.Config{}, fmt.Errorf("camera pitch_key: %w", err)
	}
	orbit, err := KeyByName(c.Camera.OrbitKey)
	if err != nil {
		return camera.Config{}, fmt.Errorf("camera orbit_key: %w", err)
	}
	cc := camera.DefaultConfig(pitch, orbit)
	cc.ZoomSensitivity = c.Camera.ZoomSensitivity
	cc.PitchSensitivity = c.Camera.PitchSensitivity
	cc.AngleSensitivity = c.Camera.AngleSensitivity
	return cc, nil
}

// PlayerControls resolves the player's key names.
func (c Config) PlayerControls() (entities.Controls, error) {
	var ctl entities.Controls
	bindings := []struct {
		name string
		dst  *int
	}{
		{c.Player.Forward, &ctl.Forward},
		{c.Player.Backward, &ctl.Backward},
		{c.Player.TurnLeft, &ctl.TurnLeft},
		{c.Player.TurnRight, &ctl.TurnRight},
		{c.Player.ToggleView, &ctl.ToggleView},
	}
	for _, b := range bindings {
		k, err := KeyByName(b.name)
		if err != nil {
			return ctl, fmt.Errorf("player keys: %w", err)
		}
		*b.dst = k
	}
	return ctl, nil
}
