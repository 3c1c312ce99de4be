package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/lineart"
)

// sceneConfig describes one demo run. It is read from a YAML file and
// overlaid by command-line flags.
type sceneConfig struct {
	Primitive string  `yaml:"primitive"`
	Size      float32 `yaml:"size"`
	Segments  int     `yaml:"segments"`

	Frames   int     `yaml:"frames"`
	Distance float32 `yaml:"distance"`
	// Pitch is the camera elevation in degrees.
	Pitch float32 `yaml:"pitch"`

	CreaseAngle float32 `yaml:"crease_angle"`
	Backend     string  `yaml:"backend"`
	Workers     int     `yaml:"workers"`
	Rounds      int     `yaml:"rounds"`
	Validate    bool    `yaml:"validate"`

	Color  string  `yaml:"color"`
	Radius float32 `yaml:"radius"`

	Output string `yaml:"output"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func defaultScene() sceneConfig {
	return sceneConfig{
		Primitive: "torus",
		Size:      1,
		Segments:  32,
		Frames:    60,
		Distance:  4,
		Pitch:     25,
		Backend:   "auto",
		Color:     "#1a1a1a",
		Radius:    0.01,
		Output:    "lineart.png",
		Width:     800,
		Height:    600,
	}
}

// loadScene reads a YAML scene file over the defaults.
func loadScene(path string) (sceneConfig, error) {
	cfg := defaultScene()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scene: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return cfg, nil
}

// parseArgs builds the scene from args. Flags that were set explicitly
// override the values from -config.
func parseArgs(args []string) (sceneConfig, bool, error) {
	fs := flag.NewFlagSet("lineartdemo", flag.ContinueOnError)
	def := defaultScene()
	var (
		configPath  = fs.String("config", "", "YAML scene file")
		primitive   = fs.String("primitive", def.Primitive, "mesh: cube, sphere, torus or grid")
		segments    = fs.Int("segments", def.Segments, "tessellation of curved primitives")
		frames      = fs.Int("frames", def.Frames, "number of orbit frames")
		distance    = fs.Float64("distance", float64(def.Distance), "camera distance")
		pitch       = fs.Float64("pitch", float64(def.Pitch), "camera elevation in degrees")
		crease      = fs.Float64("crease", 0, "crease angle in degrees, 0 disables creases")
		backend     = fs.String("backend", def.Backend, "compute backend: auto, cpu or gpu")
		workers     = fs.Int("workers", 0, "CPU worker count, 0 uses GOMAXPROCS")
		rounds      = fs.Int("rounds", 0, "pointer-jumping rounds, 0 sizes them per mesh")
		validate    = fs.Bool("validate", false, "check ranking invariants every frame")
		output      = fs.String("output", def.Output, "PNG preview of the last frame")
		width       = fs.Int("width", def.Width, "preview width")
		height      = fs.Int("height", def.Height, "preview height")
		verboseFlag = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return sceneConfig{}, false, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = loadScene(*configPath); err != nil {
			return sceneConfig{}, false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "primitive":
			cfg.Primitive = *primitive
		case "segments":
			cfg.Segments = *segments
		case "frames":
			cfg.Frames = *frames
		case "distance":
			cfg.Distance = float32(*distance)
		case "pitch":
			cfg.Pitch = float32(*pitch)
		case "crease":
			cfg.CreaseAngle = float32(*crease)
		case "backend":
			cfg.Backend = *backend
		case "workers":
			cfg.Workers = *workers
		case "rounds":
			cfg.Rounds = *rounds
		case "validate":
			cfg.Validate = *validate
		case "output":
			cfg.Output = *output
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		}
	})
	return cfg, *verboseFlag, cfg.validate()
}

func (c sceneConfig) validate() error {
	var errs []error
	if _, err := c.backendKind(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := lineart.Hex(c.Color); !ok {
		errs = append(errs, fmt.Errorf("invalid color %q", c.Color))
	}
	if c.Frames <= 0 {
		errs = append(errs, fmt.Errorf("frames must be positive, got %d", c.Frames))
	}
	if c.Size <= 0 || c.Distance <= 0 {
		errs = append(errs, errors.New("size and distance must be positive"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid preview size %dx%d", c.Width, c.Height))
	}
	if c.Segments < 3 {
		errs = append(errs, fmt.Errorf("segments must be at least 3, got %d", c.Segments))
	}
	return errors.Join(errs...)
}

func (c sceneConfig) backendKind() (lineart.BackendKind, error) {
	for _, k := range []lineart.BackendKind{lineart.BackendAuto, lineart.BackendCPU, lineart.BackendGPU} {
		if strings.EqualFold(c.Backend, k.String()) {
			return k, nil
		}
	}
	return lineart.BackendAuto, fmt.Errorf("unknown backend %q", c.Backend)
}

// mesh builds the configured primitive.
func (c sceneConfig) mesh() (*lineart.Mesh, error) {
	switch strings.ToLower(c.Primitive) {
	case "cube":
		return lineart.NewCube(c.Size), nil
	case "sphere":
		return lineart.NewUVSphere(c.Size, c.Segments, c.Segments/2), nil
	case "torus":
		return lineart.NewTorus(c.Size, c.Size/3, c.Segments, c.Segments/2), nil
	case "grid":
		return lineart.NewQuadGrid(2*c.Size, 2*c.Size, c.Segments, c.Segments), nil
	default:
		return nil, fmt.Errorf("unknown primitive %q", c.Primitive)
	}
}

func (c sceneConfig) style() lineart.Style {
	s := lineart.DefaultStyle()
	s.Color, _ = lineart.Hex(c.Color)
	s.Radius = c.Radius
	return s
}

func (c sceneConfig) options() []lineart.Option {
	kind, _ := c.backendKind()
	opts := []lineart.Option{
		lineart.WithBackend(kind),
		lineart.WithStyle(c.style()),
		lineart.WithPointerJumpRounds(c.Rounds),
	}
	if c.Workers > 0 {
		opts = append(opts, lineart.WithWorkers(c.Workers))
	}
	if c.CreaseAngle > 0 {
		opts = append(opts, lineart.WithCreaseAngle(c.CreaseAngle))
	}
	if c.Validate {
		opts = append(opts, lineart.WithEdgeReadback(true))
	}
	return opts
}
