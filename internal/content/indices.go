package content

import (
	"errors"
	"fmt"

	"mini-vox/internal/world"
)

// ErrUnknownBlock is returned for names or ids with no definition.
var ErrUnknownBlock = errors.New("unknown block")

// missing stands in for ids with no definition so lookups never fail mid-frame.
var missing = &Def{
	ID:       world.BlockVoid,
	Name:     "core:missing",
	Model:    ModelNone,
	Hitboxes: []AABB{FullBlock},
}

// Indices maps block ids to definitions. Ids are assigned in registration order
// starting from air (0). Read-only once built, safe for concurrent readers.
type Indices struct {
	defs   []*Def
	byName map[string]*Def
}

// NewIndices creates an index holding only air.
func NewIndices() *Indices {
	idx := &Indices{byName: make(map[string]*Def)}
	idx.mustRegister(&Def{
		Name:         "air",
		Model:        ModelNone,
		LightPassing: true,
	})
	return idx
}

func (idx *Indices) mustRegister(def *Def) {
	if _, err := idx.Register(def); err != nil {
		panic(err)
	}
}

// Register adds a definition and returns its assigned id.
func (idx *Indices) Register(def *Def) (world.BlockID, error) {
	if def.Name == "" {
		return 0, errors.New("block definition without name")
	}
	if _, exists := idx.byName[def.Name]; exists {
		return 0, fmt.Errorf("duplicate block %q", def.Name)
	}
	if len(idx.defs) >= int(world.BlockVoid) {
		return 0, fmt.Errorf("too many blocks registering %q", def.Name)
	}
	def.ID = world.BlockID(len(idx.defs))
	def.prepare()
	idx.defs = append(idx.defs, def)
	idx.byName[def.Name] = def
	return def.ID, nil
}

// Count returns the number of definitions, air included.
func (idx *Indices) Count() int { return len(idx.defs) }

// Get returns the definition for id, or nil.
func (idx *Indices) Get(id world.BlockID) *Def {
	if int(id) < len(idx.defs) {
		return idx.defs[id]
	}
	return nil
}

// Require returns the definition for id, or a placeholder that draws nothing.
func (idx *Indices) Require(id world.BlockID) *Def {
	if def := idx.Get(id); def != nil {
		return def
	}
	return missing
}

// ByName looks a definition up by name.
func (idx *Indices) ByName(name string) (*Def, error) {
	def, ok := idx.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, name)
	}
	return def, nil
}

// ModelOf returns the model type the voxel renders with.
func (idx *Indices) ModelOf(v world.Voxel) ModelType {
	if v.IsVoid() {
		return ModelNone
	}
	return idx.Require(v.ID).ModelFor(v.State.Userbits())
}

// LightPassing reports whether light passes through the block.
func (idx *Indices) LightPassing(id world.BlockID) bool {
	return idx.Require(id).LightPassing
}

// Palette resolves the generator palette by block names.
func (idx *Indices) Palette(bedrock, stone, dirt, grass, sand, water string) (world.Palette, error) {
	names := []string{bedrock, stone, dirt, grass, sand, water}
	ids := make([]world.BlockID, len(names))
	for i, n := range names {
		def, err := idx.ByName(n)
		if err != nil {
			return world.Palette{}, err
		}
		ids[i] = def.ID
	}
	return world.Palette{
		Bedrock: ids[0],
		Stone:   ids[1],
		Dirt:    ids[2],
		Grass:   ids[3],
		Sand:    ids[4],
		Water:   ids[5],
	}, nil
}

// Textures returns every texture name referenced by a definition, in
// first-use order.
func (idx *Indices) Textures() []string {
	seen := make(map[string]bool)
	var names []string
	for _, def := range idx.defs {
		for _, t := range def.Textures {
			if t != "" && !seen[t] {
				seen[t] = true
				names = append(names, t)
			}
		}
	}
	return names
}
