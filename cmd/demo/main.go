package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"terrain-renderer/camera"
	"terrain-renderer/core"
	"terrain-renderer/internal/opengl"
	"terrain-renderer/render"
	"terrain-renderer/resources"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		assetsDir  string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:          "demo",
		Short:        "Walk a player around a textured terrain and forest",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := core.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("assets") {
				cfg.Assets.Dir = assetsDir
			}
			if debug {
				cfg.Log.Debug = true
			}

			log, err := core.NewLogger(cfg.Log.Debug)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer log.Sync()

			if err := run(cfg, log); err != nil {
				log.Error("demo failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&assetsDir, "assets", "res", "directory holding textures, models and the heightmap")
	cmd.Flags().BoolVar(&debug, "debug", false, "development logging")
	return cmd
}

func run(cfg core.Config, log *zap.Logger) error {
	camCfg, err := cfg.CameraSettings()
	if err != nil {
		return err
	}
	controls, err := cfg.PlayerControls()
	if err != nil {
		return err
	}

	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	ctx, err := opengl.NewContext(log)
	if err != nil {
		return err
	}

	mgr := resources.NewManager(ctx, log)
	defer mgr.Teardown()

	rc := cfg.Render
	rc.Width, rc.Height = window.Width, window.Height
	renderer, err := render.NewMasterRenderer(ctx, rc, log)
	if err != nil {
		return err
	}
	defer renderer.Cleanup()
	window.OnResize(renderer.Resize)

	w, err := loadWorld(cfg, mgr, controls, log)
	if err != nil {
		return err
	}

	cam := camera.New(camCfg)
	input := core.NewInputState(window,
		camCfg.PitchKey, camCfg.OrbitKey,
		controls.Forward, controls.Backward, controls.TurnLeft, controls.TurnRight, controls.ToggleView,
		core.KeyEscape)
	display := core.NewDisplay(cfg.Window.FPSCap)
	dayNight := NewDayNight(cfg.Scene.DayLength, cfg.Scene.StartTime)
	var hud DebugOverlay

	log.Info("entering frame loop",
		zap.Int("width", window.Width),
		zap.Int("height", window.Height),
		zap.Bool("day_night", dayNight.Active))

	for !window.ShouldClose() {
		dt := display.FrameTime()
		input.Update()
		if input.IsKeyDown(core.KeyEscape) {
			window.Close()
		}

		cam.Move(input, w.player.Subject())
		w.player.Move(input, dt, w.terrain)

		if dayNight.Active {
			dayNight.Update(dt)
			renderer.SetSkyColour(dayNight.Apply(&w.light))
		}

		if err := w.submit(renderer); err != nil {
			return fmt.Errorf("submit frame: %w", err)
		}
		stats := renderer.Render(w.light, cam)

		if hud.Tick(dt) {
			hud.Clear()
			hud.AddLine("%s", cfg.Window.Title)
			hud.AddLine("%.0f fps", hud.FPS())
			hud.AddLine("%d batches, %d draws, %d terrain", stats.Batches, stats.Draws, stats.TerrainDraws)
			hud.AddLine("%s camera", cam.Mode())
			if dayNight.Active {
				hud.AddLine("%s", dayNight.TimeOfDayStr())
			}
			window.SetTitle(hud.GetText())
		}

		window.SwapBuffers()
		display.Sync()
		window.PollEvents()
	}

	log.Info("shutting down", zap.Any("resources", mgr.Stats()))
	return nil
}
