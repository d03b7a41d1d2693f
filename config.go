package fpv

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/fpv/input"
	"github.com/gogpu/fpv/internal/gpu"
	"github.com/gogpu/fpv/render"
	"github.com/gogpu/fpv/scene"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("fpv: invalid config")

// Config describes a scene, its camera, input tuning and projection.
// It is usually loaded from TOML:
//
//	[scene]
//	capacity = 1024
//
//	[camera]
//	position = [-2.0, 0.0, 0.5]
//	yaw = 0.0
//	pitch = 0.0
//
//	[input]
//	speed = 0.05
//	sensitivity = 0.1
//
//	[projection]
//	fov_deg = 45.0
//	near = 0.1
//	far = 10.0
//
//	[layout]
//	triangle_x = 2.0
//	triangle_extent = 5
//	quad_extent = 10
//	step = 1.0
//
//	[textures]
//	triangle = "assets/triangle.png"
//	quad = "assets/floor.jpg"
type Config struct {
	Scene      SceneConfig      `toml:"scene"`
	Camera     CameraConfig     `toml:"camera"`
	Input      InputConfig      `toml:"input"`
	Projection ProjectionConfig `toml:"projection"`
	Layout     LayoutConfig     `toml:"layout"`
	Textures   TextureConfig    `toml:"textures"`
}

// SceneConfig sizes the transform arena.
type SceneConfig struct {
	Capacity int `toml:"capacity"`
}

// CameraConfig is the initial camera pose. Angles are in degrees.
type CameraConfig struct {
	Position [3]float32 `toml:"position"`
	Yaw      float32    `toml:"yaw"`
	Pitch    float32    `toml:"pitch"`
}

// InputConfig tunes the controller.
type InputConfig struct {
	Speed       float32 `toml:"speed"`
	Sensitivity float32 `toml:"sensitivity"`
}

// ProjectionConfig is the perspective projection.
type ProjectionConfig struct {
	FovDeg float32 `toml:"fov_deg"`
	Near   float32 `toml:"near"`
	Far    float32 `toml:"far"`
}

// LayoutConfig is the demo grid, see scene.Grid.
type LayoutConfig struct {
	TriangleX      float32 `toml:"triangle_x"`
	TriangleExtent int     `toml:"triangle_extent"`
	QuadExtent     int     `toml:"quad_extent"`
	Step           float32 `toml:"step"`
}

// TextureConfig names the material image of each shape kind. An empty
// path uses a generated checkerboard.
type TextureConfig struct {
	Triangle string `toml:"triangle"`
	Quad     string `toml:"quad"`
}

// DefaultConfig returns the demo configuration: a column of spinning
// triangles over a floor of quads, seen from behind the column.
func DefaultConfig() Config {
	g := scene.DefaultGrid()
	p := render.DefaultProjection()
	return Config{
		Scene: SceneConfig{Capacity: scene.DefaultCapacity},
		Camera: CameraConfig{
			Position: [3]float32{-2, 0, 0.5},
		},
		Input: InputConfig{
			Speed:       input.DefaultSpeed,
			Sensitivity: input.DefaultSensitivity,
		},
		Projection: ProjectionConfig{
			FovDeg: mgl32.RadToDeg(p.FovY),
			Near:   p.Near,
			Far:    p.Far,
		},
		Layout: LayoutConfig{
			TriangleX:      g.TriangleX,
			TriangleExtent: g.TriangleExtent,
			QuadExtent:     g.QuadExtent,
			Step:           g.Step,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("fpv: read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML on top of DefaultConfig and validates the
// result. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("fpv: unknown config keys:\n%s", strict.String())
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("fpv: config line %d column %d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("fpv: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks ranges. It does not check that texture files exist.
func (c Config) Validate() error {
	switch {
	case c.Scene.Capacity <= 0:
		return fmt.Errorf("%w: scene.capacity %d", ErrInvalidConfig, c.Scene.Capacity)
	case !finite32(c.Camera.Position[0], c.Camera.Position[1], c.Camera.Position[2], c.Camera.Yaw, c.Camera.Pitch):
		return fmt.Errorf("%w: camera pose is not finite", ErrInvalidConfig)
	case c.Input.Speed < 0 || c.Input.Sensitivity < 0:
		return fmt.Errorf("%w: negative input tuning", ErrInvalidConfig)
	case c.Projection.FovDeg <= 0 || c.Projection.FovDeg >= 180:
		return fmt.Errorf("%w: projection.fov_deg %v", ErrInvalidConfig, c.Projection.FovDeg)
	case c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near:
		return fmt.Errorf("%w: projection near %v far %v", ErrInvalidConfig, c.Projection.Near, c.Projection.Far)
	}
	if err := c.Grid().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if n := c.Grid().Counts().Total(); n > c.Scene.Capacity {
		return fmt.Errorf("%w: layout places %d entities, capacity is %d", ErrInvalidConfig, n, c.Scene.Capacity)
	}
	return nil
}

// Grid returns the layout section as a scene.Grid.
func (c Config) Grid() scene.Grid {
	return scene.Grid{
		TriangleX:      c.Layout.TriangleX,
		TriangleExtent: c.Layout.TriangleExtent,
		QuadExtent:     c.Layout.QuadExtent,
		Step:           c.Layout.Step,
	}
}

// RenderProjection returns the projection section in radians.
func (c Config) RenderProjection() render.Projection {
	return render.Projection{
		FovY: mgl32.DegToRad(c.Projection.FovDeg),
		Near: c.Projection.Near,
		Far:  c.Projection.Far,
	}
}

// Controller returns a controller tuned by the input section.
func (c Config) Controller() *input.Controller {
	ctrl := input.NewController()
	ctrl.Speed = c.Input.Speed
	ctrl.Sensitivity = c.Input.Sensitivity
	return ctrl
}

// TexturePaths returns the texture paths indexed by shape kind.
func (c Config) TexturePaths() [scene.NumShapes]string {
	var p [scene.NumShapes]string
	p[scene.KindTriangle] = c.Textures.Triangle
	p[scene.KindQuad] = c.Textures.Quad
	return p
}

// LoadMaterials loads the configured texture images. Kinds with no path
// keep a nil image and get the checkerboard fallback at setup.
func (c Config) LoadMaterials() (gpu.Materials, error) {
	return gpu.LoadMaterials(c.TexturePaths())
}

// BuildScene creates the camera and lays out the grid.
func (c Config) BuildScene() (*scene.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cam := scene.NewCamera(mgl32.Vec3(c.Camera.Position), c.Camera.Yaw, c.Camera.Pitch)
	b := scene.NewBuilder(c.Scene.Capacity).WithCamera(cam)
	return c.Grid().Populate(b).Build()
}

func finite32(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
