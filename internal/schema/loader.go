package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk shape of a schema definition. YAML is the
// canonical format; JSON files parse through the same decoder since
// yaml.v3 accepts JSON input.
type fileSchema struct {
	Entities []fileEntity `yaml:"entities"`
}

type fileEntity struct {
	Name      string         `yaml:"name"`
	Fields    []fileField    `yaml:"fields"`
	Relations []fileRelation `yaml:"relations"`
}

type fileField struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Unique   bool   `yaml:"unique"`
	Default  bool   `yaml:"default"`
	ID       bool   `yaml:"id"`
}

type fileRelation struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Target     string `yaml:"target"`
	ForeignKey string `yaml:"foreignKey"`
}

// Load reads a schema definition from disk and builds the entity model.
// It enforces basic well-formedness: unique entity names, unique field
// names per entity, known field types and relation kinds. Relation
// target resolution is the analyzer's job, not the loader's.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Parse builds the entity model from raw schema bytes.
func Parse(data []byte) (*Schema, error) {
	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	if len(fs.Entities) == 0 {
		return nil, fmt.Errorf("schema defines no entities")
	}

	seen := make(map[string]bool, len(fs.Entities))
	entities := make([]*Entity, 0, len(fs.Entities))

	for _, fe := range fs.Entities {
		if strings.TrimSpace(fe.Name) == "" {
			return nil, fmt.Errorf("entity with empty name")
		}
		if seen[fe.Name] {
			return nil, fmt.Errorf("duplicate entity name: %s", fe.Name)
		}
		seen[fe.Name] = true

		e, err := buildEntity(fe)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return NewSchema(entities), nil
}

func buildEntity(fe fileEntity) (*Entity, error) {
	e := &Entity{Name: fe.Name}

	fieldSeen := make(map[string]bool, len(fe.Fields))
	for _, ff := range fe.Fields {
		if strings.TrimSpace(ff.Name) == "" {
			return nil, fmt.Errorf("entity %s: field with empty name", fe.Name)
		}
		if fieldSeen[ff.Name] {
			return nil, fmt.Errorf("entity %s: duplicate field name: %s", fe.Name, ff.Name)
		}
		fieldSeen[ff.Name] = true

		ft, err := ParseFieldType(ff.Type)
		if err != nil {
			return nil, fmt.Errorf("entity %s: field %s: %w", fe.Name, ff.Name, err)
		}

		e.Fields = append(e.Fields, &Field{
			Name:       ff.Name,
			Type:       ft,
			Nullable:   ff.Nullable,
			Unique:     ff.Unique,
			HasDefault: ff.Default,
			IsID:       ff.ID,
		})
	}

	relSeen := make(map[string]bool, len(fe.Relations))
	for _, fr := range fe.Relations {
		if strings.TrimSpace(fr.Name) == "" {
			return nil, fmt.Errorf("entity %s: relation with empty name", fe.Name)
		}
		if relSeen[fr.Name] {
			return nil, fmt.Errorf("entity %s: duplicate relation name: %s", fe.Name, fr.Name)
		}
		relSeen[fr.Name] = true

		kind, err := ParseRelationKind(fr.Kind)
		if err != nil {
			return nil, fmt.Errorf("entity %s: relation %s: %w", fe.Name, fr.Name, err)
		}
		if fr.Target == "" {
			return nil, fmt.Errorf("entity %s: relation %s has no target", fe.Name, fr.Name)
		}
		if kind == ToOne && fr.ForeignKey == "" {
			return nil, fmt.Errorf("entity %s: to-one relation %s has no foreign key", fe.Name, fr.Name)
		}
		if kind == ToOne && !fieldSeen[fr.ForeignKey] {
			return nil, fmt.Errorf("entity %s: relation %s: foreign key field %s not declared", fe.Name, fr.Name, fr.ForeignKey)
		}

		e.Relations = append(e.Relations, &Relation{
			Name:       fr.Name,
			Kind:       kind,
			Target:     fr.Target,
			ForeignKey: fr.ForeignKey,
		})
	}

	return e, nil
}
