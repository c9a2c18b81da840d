// Package config loads and saves the viewer configuration as YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrsinham/dicomview/internal/export"
	"github.com/mrsinham/dicomview/internal/render"
	"github.com/mrsinham/dicomview/internal/viewer"
	"gopkg.in/yaml.v3"
)

// DefaultWheelNotch is the wheel delta sent for one notch of a terminal
// mouse wheel.
const DefaultWheelNotch = 100

// Config is the complete viewer configuration.
type Config struct {
	Navigation NavigationConfig `yaml:"navigation"`
	Tools      ToolsConfig      `yaml:"tools"`
	Display    DisplayConfig    `yaml:"display"`
	Export     ExportConfig     `yaml:"export"`
}

// NavigationConfig holds the stack navigation thresholds.
type NavigationConfig struct {
	StackScrollThreshold float64 `yaml:"stack_scroll_threshold"`
	WheelThreshold       float64 `yaml:"wheel_threshold"`
	WheelCooldownMS      int     `yaml:"wheel_cooldown_ms"`
	WheelNotch           float64 `yaml:"wheel_notch"`
}

// ToolsConfig holds the default tool and the drag sensitivities.
type ToolsConfig struct {
	Default                 string  `yaml:"default"`
	WindowWidthSensitivity  float64 `yaml:"window_width_sensitivity"`
	WindowCenterSensitivity float64 `yaml:"window_center_sensitivity"`
	ZoomStep                float64 `yaml:"zoom_step"`
	ZoomMin                 float64 `yaml:"zoom_min"`
	ZoomMax                 float64 `yaml:"zoom_max"`
}

// DisplayConfig holds the rendering canvas settings.
type DisplayConfig struct {
	Placeholder  string `yaml:"placeholder"`
	CanvasWidth  int    `yaml:"canvas_width"`
	CanvasHeight int    `yaml:"canvas_height"`
}

// ExportConfig mirrors export.Options.
type ExportConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Format      string `yaml:"format"`
	Filename    string `yaml:"filename"`
	Annotations bool   `yaml:"annotations"`
	Warning     bool   `yaml:"warning"`
	WarningText string `yaml:"warning_text"`
	Quality     int    `yaml:"quality"`
}

// Default returns the stock configuration.
func Default() *Config {
	g := viewer.DefaultGestureConfig()
	e := export.DefaultOptions()
	return &Config{
		Navigation: NavigationConfig{
			StackScrollThreshold: g.StackScrollThreshold,
			WheelThreshold:       g.WheelThreshold,
			WheelCooldownMS:      int(g.WheelCooldown / time.Millisecond),
			WheelNotch:           DefaultWheelNotch,
		},
		Tools: ToolsConfig{
			Default:                 viewer.ToolWindowLevel.String(),
			WindowWidthSensitivity:  g.WindowWidthSensitivity,
			WindowCenterSensitivity: g.WindowCenterSensitivity,
			ZoomStep:                g.ZoomStep,
			ZoomMin:                 g.ZoomMin,
			ZoomMax:                 g.ZoomMax,
		},
		Display: DisplayConfig{
			Placeholder:  viewer.DefaultPlaceholder,
			CanvasWidth:  render.DefaultWidth,
			CanvasHeight: render.DefaultHeight,
		},
		Export: ExportConfig{
			Width:       e.Width,
			Height:      e.Height,
			Format:      string(e.Format),
			Filename:    e.Filename,
			Annotations: e.Annotations,
			Warning:     e.Warning,
			WarningText: e.WarningText,
			Quality:     e.Quality,
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks every value for range and syntax.
func (c *Config) Validate() error {
	var errs []error
	n := c.Navigation
	if n.StackScrollThreshold <= 0 {
		errs = append(errs, fmt.Errorf("navigation.stack_scroll_threshold must be positive"))
	}
	if n.WheelThreshold <= 0 {
		errs = append(errs, fmt.Errorf("navigation.wheel_threshold must be positive"))
	}
	if n.WheelCooldownMS < 0 {
		errs = append(errs, fmt.Errorf("navigation.wheel_cooldown_ms cannot be negative"))
	}
	if n.WheelNotch <= 0 {
		errs = append(errs, fmt.Errorf("navigation.wheel_notch must be positive"))
	}

	t := c.Tools
	if tool, err := viewer.ParseTool(t.Default); err != nil {
		errs = append(errs, fmt.Errorf("tools.default: %w", err))
	} else if tool == viewer.ToolReset {
		errs = append(errs, fmt.Errorf("tools.default: reset is not a drag tool"))
	}
	if t.WindowWidthSensitivity <= 0 || t.WindowCenterSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("tools: window sensitivities must be positive"))
	}
	if t.ZoomStep <= 0 {
		errs = append(errs, fmt.Errorf("tools.zoom_step must be positive"))
	}
	if t.ZoomMin <= 0 || t.ZoomMax < t.ZoomMin {
		errs = append(errs, fmt.Errorf("tools: zoom bounds %v..%v are invalid", t.ZoomMin, t.ZoomMax))
	}

	if c.Display.CanvasWidth <= 0 || c.Display.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("display: canvas size %dx%d is invalid", c.Display.CanvasWidth, c.Display.CanvasHeight))
	}

	e := c.Export
	if e.Width <= 0 || e.Height <= 0 {
		errs = append(errs, fmt.Errorf("export: size %dx%d is invalid", e.Width, e.Height))
	}
	if _, err := export.ParseFormat(e.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if e.Quality < 1 || e.Quality > 100 {
		errs = append(errs, fmt.Errorf("export.quality must be between 1 and 100"))
	}
	return errors.Join(errs...)
}

// Gestures returns the interaction settings for a viewer session.
func (c *Config) Gestures() viewer.GestureConfig {
	return viewer.GestureConfig{
		StackScrollThreshold:    c.Navigation.StackScrollThreshold,
		WheelThreshold:          c.Navigation.WheelThreshold,
		WheelCooldown:           time.Duration(c.Navigation.WheelCooldownMS) * time.Millisecond,
		WindowWidthSensitivity:  c.Tools.WindowWidthSensitivity,
		WindowCenterSensitivity: c.Tools.WindowCenterSensitivity,
		ZoomStep:                c.Tools.ZoomStep,
		ZoomMin:                 c.Tools.ZoomMin,
		ZoomMax:                 c.Tools.ZoomMax,
	}
}

// DefaultTool returns the configured initial tool, window/level when the
// name is unknown.
func (c *Config) DefaultTool() viewer.Tool {
	t, err := viewer.ParseTool(c.Tools.Default)
	if err != nil {
		return viewer.ToolWindowLevel
	}
	return t
}

// SessionOptions builds session options around engine and parser.
func (c *Config) SessionOptions(engine viewer.Engine, parser viewer.Parser) viewer.Options {
	return viewer.Options{
		Engine:      engine,
		Parser:      parser,
		Gestures:    c.Gestures(),
		DefaultTool: c.DefaultTool(),
		Placeholder: c.Display.Placeholder,
	}
}

// ExportOptions returns the export settings.
func (c *Config) ExportOptions() export.Options {
	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		format = export.FormatJPEG
	}
	return export.Options{
		Width:       c.Export.Width,
		Height:      c.Export.Height,
		Filename:    c.Export.Filename,
		Format:      format,
		Annotations: c.Export.Annotations,
		Warning:     c.Export.Warning,
		WarningText: c.Export.WarningText,
		Quality:     c.Export.Quality,
	}
}

// SetExportOptions stores opts as the export section.
func (c *Config) SetExportOptions(opts export.Options) {
	c.Export = ExportConfig{
		Width:       opts.Width,
		Height:      opts.Height,
		Format:      string(opts.Format),
		Filename:    opts.Filename,
		Annotations: opts.Annotations,
		Warning:     opts.Warning,
		WarningText: opts.WarningText,
		Quality:     opts.Quality,
	}
}
