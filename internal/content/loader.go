package content

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"mini-vox/internal/logging"
	"mini-vox/internal/world"
)

var log = logging.New("content")

//go:embed blocks.yaml
var defaultBlocks []byte

type fileBlocks struct {
	Blocks []fileDef `yaml:"blocks"`
}

type fileDef struct {
	Name         string            `yaml:"name"`
	Model        string            `yaml:"model"`
	Variants     map[uint8]string  `yaml:"variants"`
	Hitboxes     [][6]float32      `yaml:"hitboxes"`
	Rotatable    bool              `yaml:"rotatable"`
	Solid        *bool             `yaml:"solid"`
	Translucent  bool              `yaml:"translucent"`
	LightPassing bool              `yaml:"light-passing"`
	Emission     [3]uint8          `yaml:"emission"`
	Texture      string            `yaml:"texture"`
	Textures     map[string]string `yaml:"texture-faces"`
	Tint         uint32            `yaml:"tint"`
	TintFaces    []string          `yaml:"tint-faces"`
}

// Default returns the index of built-in block definitions.
func Default() *Indices {
	idx, err := Parse(defaultBlocks)
	if err != nil {
		panic(fmt.Sprintf("content: built-in definitions: %v", err))
	}
	return idx
}

// LoadFile reads block definitions from a YAML file.
func LoadFile(path string) (*Indices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	idx, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	log.Info("loaded %d block definitions from %s", idx.Count(), path)
	return idx, nil
}

// Parse builds an index from YAML definitions. Air is always id 0.
func Parse(data []byte) (*Indices, error) {
	var f fileBlocks
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse blocks: %w", err)
	}
	idx := NewIndices()
	for i, fd := range f.Blocks {
		def, err := fd.build()
		if err != nil {
			return nil, fmt.Errorf("block #%d %q: %w", i, fd.Name, err)
		}
		if _, err := idx.Register(def); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func (fd fileDef) build() (*Def, error) {
	model, err := ParseModelType(fd.Model)
	if err != nil {
		return nil, err
	}
	def := &Def{
		Name:         fd.Name,
		Model:        model,
		Rotatable:    fd.Rotatable,
		Solid:        model == ModelBlock,
		Translucent:  fd.Translucent,
		LightPassing: fd.LightPassing || model == ModelNone,
		Emission:     fd.Emission,
		Tint: mgl32.Vec3{
			float32(fd.Tint>>16&0xFF) / 255,
			float32(fd.Tint>>8&0xFF) / 255,
			float32(fd.Tint&0xFF) / 255,
		},
	}
	if fd.Solid != nil {
		def.Solid = *fd.Solid
	}
	if len(fd.Variants) > 0 {
		def.Variants = make(map[uint8]ModelType, len(fd.Variants))
		for bits, name := range fd.Variants {
			m, err := ParseModelType(name)
			if err != nil {
				return nil, fmt.Errorf("variant %d: %w", bits, err)
			}
			def.Variants[bits] = m
		}
	}
	for _, hb := range fd.Hitboxes {
		def.Hitboxes = append(def.Hitboxes, AABB{
			Min: mgl32.Vec3{hb[0], hb[1], hb[2]},
			Max: mgl32.Vec3{hb[3], hb[4], hb[5]},
		})
	}

	tex := fd.Texture
	if tex == "" && model != ModelNone {
		tex = fd.Name
	}
	for i := range def.Textures {
		def.Textures[i] = tex
	}
	for name, t := range fd.Textures {
		face, err := world.ParseFace(name)
		if err != nil {
			return nil, err
		}
		def.Textures[face] = t
	}
	for _, name := range fd.TintFaces {
		face, err := world.ParseFace(name)
		if err != nil {
			return nil, err
		}
		def.TintFaces |= 1 << face
	}
	return def, nil
}
