package assets

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
)

type imageLoader struct{}

func (il *imageLoader) Load(path string) (interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding image %s", path)
	}
	return img, nil
}

func (am *AssetManager) LoadImage(name string) (image.Image, error) {
	res, err := am.LoadAsset(name, AssetTypeImage)
	if err != nil {
		return nil, err
	}
	return res.(image.Image), nil
}

/** @brief TOML description of a procedural mesh, stored in .mesh files. */
type MeshDescriptor struct {
	Name string `toml:"name"`
	/** @brief "cube", "plane" or "custom". */
	Shape     string  `toml:"shape"`
	Width     float32 `toml:"width"`
	Height    float32 `toml:"height"`
	Depth     float32 `toml:"depth"`
	XSegments uint32  `toml:"x_segments"`
	YSegments uint32  `toml:"y_segments"`
	TileX     float32 `toml:"tile_x"`
	TileY     float32 `toml:"tile_y"`
	/** @brief "separate" or "interleaved". */
	Layout string `toml:"layout"`
	/** @brief Vertex positions of a custom shape. */
	Positions [][3]float32 `toml:"positions"`
	/** @brief Triangle list over Positions. Normals are generated per face. */
	Indices []uint32 `toml:"indices"`
	/** @brief Applied to the generated vertices: scale, then rotation around Y, then translation. */
	Transform MeshTransform `toml:"transform"`
}

type MeshTransform struct {
	Translation [3]float32 `toml:"translation"`
	/** @brief Rotation around the Y axis in degrees. */
	RotationY float32    `toml:"rotation_y"`
	Scale     [3]float32 `toml:"scale"`
}

// Matrix returns the transform as a single matrix.
func (t MeshTransform) Matrix() math.Mat4 {
	scale := math.NewMat4Scale(math.NewVec3(t.Scale[0], t.Scale[1], t.Scale[2]))
	rotation := math.NewMat4EulerY(t.RotationY * math.K_DEG2RAD_MULTIPLIER)
	translation := math.NewMat4Translation(math.NewVec3(t.Translation[0], t.Translation[1], t.Translation[2]))
	return translation.Mul(rotation).Mul(scale)
}

func (t MeshTransform) identity() bool {
	return t.Translation == [3]float32{} && t.RotationY == 0 && t.Scale == [3]float32{1, 1, 1}
}

func ParseMeshDescriptor(data []byte) (*MeshDescriptor, error) {
	desc := &MeshDescriptor{
		Shape:     "cube",
		Width:     1,
		Height:    1,
		Depth:     1,
		XSegments: 1,
		YSegments: 1,
		TileX:     1,
		TileY:     1,
		Layout:    "separate",
		Transform: MeshTransform{Scale: [3]float32{1, 1, 1}},
	}
	if err := toml.Unmarshal(data, desc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding mesh descriptor"), core.ErrInvalidConfig)
	}
	return desc, nil
}

// Generate builds the CPU mesh the descriptor names.
func (d *MeshDescriptor) Generate() (*CPUMesh, error) {
	var layout VertexLayout
	switch d.Layout {
	case "separate", "":
		layout = LayoutSeparate
	case "interleaved":
		layout = LayoutInterleaved
	default:
		return nil, errors.Wrapf(core.ErrInvalidConfig, "unknown vertex layout %q", d.Layout)
	}

	var vertices []math.Vertex3D
	var indices []uint32
	switch d.Shape {
	case "cube":
		vertices, indices = cubeGeometry(d.Width, d.Height, d.Depth, d.TileX, d.TileY)
	case "plane":
		vertices, indices = planeGeometry(d.Width, d.Height, d.XSegments, d.YSegments, d.TileX, d.TileY)
	case "custom":
		var err error
		if vertices, err = d.customGeometry(); err != nil {
			return nil, err
		}
		indices = d.Indices
	default:
		return nil, errors.Wrapf(core.ErrInvalidConfig, "unknown mesh shape %q", d.Shape)
	}

	if !d.Transform.identity() {
		m := d.Transform.Matrix()
		for i := range vertices {
			vertices[i].Position = m.TransformPoint(vertices[i].Position)
			vertices[i].Normal = m.TransformVector(vertices[i].Normal).Normalized()
		}
	}
	return NewCPUMesh(d.Name, NewCPUMeshBufferFromVertices(vertices, indices, layout)), nil
}

func (d *MeshDescriptor) customGeometry() ([]math.Vertex3D, error) {
	if len(d.Positions) == 0 || len(d.Indices) == 0 || len(d.Indices)%3 != 0 {
		return nil, errors.Wrapf(core.ErrInvalidConfig, "custom mesh %q needs positions and a triangle list, got %d positions and %d indices", d.Name, len(d.Positions), len(d.Indices))
	}
	vertices := make([]math.Vertex3D, len(d.Positions))
	for i, p := range d.Positions {
		vertices[i] = math.Vertex3D{
			Position: math.NewVec3(p[0], p[1], p[2]),
			Colour:   math.NewVec4(1, 1, 1, 1),
		}
	}
	for _, ix := range d.Indices {
		if int(ix) >= len(vertices) {
			return nil, errors.Wrapf(core.ErrIndexOutOfBounds, "custom mesh %q: index %d of %d vertices", d.Name, ix, len(vertices))
		}
	}
	math.GeometryGenerateNormals(vertices, d.Indices)
	return vertices, nil
}

type meshLoader struct{}

func (ml *meshLoader) Load(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := ParseMeshDescriptor(data)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %s", path)
	}
	if desc.Name == "" {
		desc.Name = assetName(path)
	}
	return desc.Generate()
}

// Checkerboard returns a size x size image of alternating tiles, used as the default texture.
func Checkerboard(size, tile int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if ((x/tile)+(y/tile))%2 == 0 {
				img.SetRGBA(x, y, white)
			} else {
				img.SetRGBA(x, y, blue)
			}
		}
	}
	return img
}
