// Package recipefile reads and writes recipe collections as TOML or YAML,
// and imports them into a store with their fork relationships intact.
//
// A file lists entries; an entry with fork_of is created as a fork of
// either another entry (by key) or a recipe already in the store (by id).
//
//	[[recipe]]
//	key = "base"
//	title = "Lasagna"
//	owner = "ana"
//
//	[[recipe]]
//	key = "vegan"
//	fork_of = "base"
//	title = "Vegan lasagna"
//
//	  [[recipe.ingredients]]
//	  ingredient = "tofu"
//	  amount = 400
//	  unit = "g"
package recipefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/collaboreats/collaboreats/internal/types"
)

// Format is a file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// File is a recipe collection.
type File struct {
	Recipes []Entry `toml:"recipe" yaml:"recipes" validate:"dive"`
}

// Entry is one recipe in a file.
type Entry struct {
	Key          string       `toml:"key" yaml:"key" validate:"required,max=64"`
	ForkOf       string       `toml:"fork_of,omitempty" yaml:"fork_of,omitempty"`
	Title        string       `toml:"title,omitempty" yaml:"title,omitempty" validate:"max=200"`
	Owner        string       `toml:"owner,omitempty" yaml:"owner,omitempty"`
	Description  string       `toml:"description,omitempty" yaml:"description,omitempty"`
	Instructions string       `toml:"instructions,omitempty" yaml:"instructions,omitempty"`
	Photo        string       `toml:"photo,omitempty" yaml:"photo,omitempty"`
	Ingredients  []Ingredient `toml:"ingredients,omitempty" yaml:"ingredients,omitempty" validate:"dive"`
}

// Ingredient is one ingredient line of an entry.
type Ingredient struct {
	Ingredient string  `toml:"ingredient" yaml:"ingredient" validate:"required"`
	Amount     float64 `toml:"amount" yaml:"amount" validate:"gte=0"`
	Unit       string  `toml:"unit,omitempty" yaml:"unit,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%s: unsupported extension (want .toml, .yaml or .yml)", path)
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - user-supplied import file
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates data.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, fmt.Errorf("unknown field %q", undec[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and that keys are unique. Whether a
// fork_of reference resolves is only known at import time.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid %s: failed %q", e.Namespace(), e.Tag())
		}
		return err
	}
	seen := make(map[string]bool, len(f.Recipes))
	for i, e := range f.Recipes {
		if seen[e.Key] {
			return fmt.Errorf("recipe %d: duplicate key %q", i+1, e.Key)
		}
		seen[e.Key] = true
		if e.ForkOf == e.Key {
			return fmt.Errorf("recipe %q: cannot fork itself", e.Key)
		}
		if e.ForkOf == "" && (e.Title == "" || e.Owner == "") {
			return fmt.Errorf("recipe %q: title and owner are required for a new recipe", e.Key)
		}
	}
	return nil
}

// Encode writes f in format.
func (f *File) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

// Draft converts e into a recipe draft for the store.
func (e Entry) Draft() *types.Recipe {
	r := &types.Recipe{
		Title:        e.Title,
		OwnerID:      e.Owner,
		Description:  e.Description,
		Instructions: e.Instructions,
		Photo:        e.Photo,
	}
	for _, in := range e.Ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{
			Ingredient:    in.Ingredient,
			Amount:        in.Amount,
			UnitOfMeasure: in.Unit,
		})
	}
	return r
}

// FromVersionSet turns a stored tree into a file that re-imports as the
// same shape. Keys are the stored ids; the root comes first, then the
// records in the set's order.
func FromVersionSet(set *types.VersionSet) *File {
	f := &File{Recipes: make([]Entry, 0, set.Len())}
	f.Recipes = append(f.Recipes, entryFor(set.Root))
	for _, r := range set.Records {
		f.Recipes = append(f.Recipes, entryFor(r))
	}
	return f
}

func entryFor(r *types.Recipe) Entry {
	e := Entry{
		Key:          r.ID,
		ForkOf:       r.ParentID,
		Title:        r.Title,
		Owner:        r.OwnerID,
		Description:  r.Description,
		Instructions: r.Instructions,
		Photo:        r.Photo,
	}
	for _, in := range r.Ingredients {
		e.Ingredients = append(e.Ingredients, Ingredient{
			Ingredient: in.Ingredient,
			Amount:     in.Amount,
			Unit:       in.UnitOfMeasure,
		})
	}
	return e
}
