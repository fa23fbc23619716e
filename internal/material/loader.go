package material

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server/block/cube"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrNoMaterials is returned when a table file defines nothing.
var ErrNoMaterials = errors.New("material: no materials defined")

// TableSpec is the on-disk form of a material table.
type TableSpec struct {
	Materials []PropsSpec `yaml:"materials"`
}

// PropsSpec is the on-disk form of one material.
type PropsSpec struct {
	Name         string       `yaml:"name"`
	Shape        string       `yaml:"shape"`
	Boxes        [][6]float64 `yaml:"boxes"`
	Bounce       float64      `yaml:"bounce"`
	Slipperiness *float64     `yaml:"slipperiness"`
	Replaceable  bool         `yaml:"replaceable"`
	Hardness     *float64     `yaml:"hardness"`
	Fluid        bool         `yaml:"fluid"`
	Decoration   bool         `yaml:"decoration"`
	PassableFrom []string     `yaml:"passable_from"`
	Breaker      bool         `yaml:"breaker"`
}

var namedShapes = map[string][]cube.BBox{
	"full":   {cube.Box(0, 0, 0, 1, 1, 1)},
	"slab":   {cube.Box(0, 0, 0, 1, 0.5, 1)},
	"carpet": {cube.Box(0, 0, 0, 1, 1.0/16, 1)},
	"empty":  nil,
}

var faceNames = map[string]cube.Face{
	"down":  cube.FaceDown,
	"up":    cube.FaceUp,
	"north": cube.FaceNorth,
	"south": cube.FaceSouth,
	"west":  cube.FaceWest,
	"east":  cube.FaceEast,
}

// DefaultTable returns the built-in material table.
func DefaultTable() *Table {
	t, err := ParseTable(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("material: built-in table: %v", err))
	}
	return t
}

// LoadTable reads a material table from a YAML file.
func LoadTable(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("material: load %s: %w", filename, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("material: parse %s: %w", filename, err)
	}
	return t, nil
}

// ParseTable decodes a material table from YAML.
func ParseTable(data []byte) (*Table, error) {
	var spec TableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("material: unmarshal: %w", err)
	}
	if len(spec.Materials) == 0 {
		return nil, ErrNoMaterials
	}

	props := make([]*Props, 0, len(spec.Materials))
	for i, ms := range spec.Materials {
		p, err := ms.build()
		if err != nil {
			return nil, fmt.Errorf("material: entry %d: %w", i, err)
		}
		props = append(props, p)
	}
	return NewTable(props...), nil
}

func (s PropsSpec) build() (*Props, error) {
	if s.Name == "" {
		return nil, errors.New("missing name")
	}

	p := &Props{
		Name:         s.Name,
		Bounce:       s.Bounce,
		Slipperiness: DefaultSlipperiness,
		Replaceable:  s.Replaceable,
		Fluid:        s.Fluid,
		Decoration:   s.Decoration,
		Breaker:      s.Breaker,
	}
	if s.Slipperiness != nil {
		p.Slipperiness = *s.Slipperiness
	}
	if s.Hardness != nil {
		p.Hardness = *s.Hardness
	}
	if p.Bounce < 0 {
		return nil, fmt.Errorf("%s: negative bounce %v", s.Name, p.Bounce)
	}

	switch {
	case len(s.Boxes) > 0:
		for _, b := range s.Boxes {
			p.Shape = append(p.Shape, cube.Box(b[0], b[1], b[2], b[3], b[4], b[5]))
		}
	case s.Shape == "":
		p.Shape = namedShapes["full"]
	default:
		shape, ok := namedShapes[strings.ToLower(s.Shape)]
		if !ok {
			return nil, fmt.Errorf("%s: unknown shape %q", s.Name, s.Shape)
		}
		p.Shape = shape
	}

	for _, name := range s.PassableFrom {
		f, ok := faceNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%s: unknown face %q", s.Name, name)
		}
		p.PassableFrom = append(p.PassableFrom, f)
	}
	return p, nil
}
