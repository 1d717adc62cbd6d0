// Package loader reads property, model, component and entity-type
// definitions from manifest files into the kernel registries.
//
// Two formats are accepted. YAML manifests (.yaml, .yml) group definitions
// by kind:
//
//	properties:
//	  - {id: symbol, name: Symbol, data_type: string}
//	models:
//	  - {id: order, referenced_properties: [symbol]}
//	entity_types:
//	  orders: meta
//
// JSONL files (.jsonl) carry one definition per line, tagged with a kind:
//
//	{"kind":"property","id":"symbol","name":"Symbol","data_type":"string"}
//	{"kind":"entity_type","name":"orders","type":"meta"}
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/metakernel/internal/catalog"
	"github.com/mesh-intelligence/metakernel/internal/entitytype"
	"github.com/mesh-intelligence/metakernel/internal/model"
	"github.com/mesh-intelligence/metakernel/pkg/types"
)

// Definition kinds used by JSONL lines.
const (
	KindProperty   = "property"
	KindModel      = "model"
	KindComponent  = "component"
	KindEntityType = "entity_type"
)

// Manifest is the YAML document layout.
type Manifest struct {
	Properties  []types.PropertyDefinition  `yaml:"properties"`
	Components  []types.ComponentDefinition `yaml:"components"`
	Models      []types.ModelDefinition     `yaml:"models"`
	EntityTypes map[string]types.EntityType `yaml:"entity_types"`
}

// Summary counts what a load registered.
type Summary struct {
	Files       int `json:"files"`
	Properties  int `json:"properties"`
	Components  int `json:"components"`
	Models      int `json:"models"`
	EntityTypes int `json:"entity_types"`
	Skipped     int `json:"skipped"`
}

// Total returns the number of registered definitions.
func (s Summary) Total() int {
	return s.Properties + s.Components + s.Models + s.EntityTypes
}

func (s *Summary) add(o Summary) {
	s.Files += o.Files
	s.Properties += o.Properties
	s.Components += o.Components
	s.Models += o.Models
	s.EntityTypes += o.EntityTypes
	s.Skipped += o.Skipped
}

// Loader registers definitions into a catalog, a model registry and an
// entity-type registry.
type Loader struct {
	catalog     *catalog.Catalog
	models      *model.Registry
	entityTypes *entitytype.Registry
	log         logrus.FieldLogger
}

// New creates a loader. A nil logger discards output.
func New(cat *catalog.Catalog, models *model.Registry, entityTypes *entitytype.Registry, log logrus.FieldLogger) *Loader {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Loader{catalog: cat, models: models, entityTypes: entityTypes, log: log}
}

// LoadDir loads every .yaml, .yml and .jsonl file in dir, in name order.
// A missing directory loads nothing.
func (l *Loader) LoadDir(dir string) (Summary, error) {
	var total Summary
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return total, nil
	}
	if err != nil {
		return total, fmt.Errorf("reading definitions dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || formatOf(e.Name()) == "" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		s, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			return total, err
		}
		total.add(s)
	}
	return total, nil
}

// LoadFile loads one manifest, choosing the format by extension.
func (l *Loader) LoadFile(path string) (Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var s Summary
	switch formatOf(path) {
	case "yaml":
		s, err = l.loadYAML(raw)
	case "jsonl":
		s = l.loadJSONL(raw, path)
	default:
		return Summary{}, fmt.Errorf("unsupported definition file %s", path)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("loading %s: %w", path, err)
	}
	s.Files = 1
	l.log.WithFields(logrus.Fields{
		"file":        filepath.Base(path),
		"definitions": s.Total(),
		"skipped":     s.Skipped,
	}).Debug("loaded definitions")
	return s, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".jsonl":
		return "jsonl"
	default:
		return ""
	}
}

func (l *Loader) loadYAML(raw []byte) (Summary, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Summary{}, err
	}
	return l.apply(m)
}

// apply registers a manifest. Properties go first so model validation
// after a load sees the whole catalog.
func (l *Loader) apply(m Manifest) (Summary, error) {
	var s Summary
	for i := range m.Properties {
		if l.catalog.Register(&m.Properties[i]) {
			s.Properties++
		} else {
			s.Skipped++
		}
	}
	for _, c := range m.Components {
		if err := l.models.RegisterComponent(c); err != nil {
			return s, err
		}
		s.Components++
	}
	for _, md := range m.Models {
		if err := l.models.RegisterModel(md); err != nil {
			return s, err
		}
		s.Models++
	}
	names := make([]string, 0, len(m.EntityTypes))
	for name := range m.EntityTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == "" {
			s.Skipped++
			continue
		}
		l.entityTypes.Register(name, m.EntityTypes[name])
		s.EntityTypes++
	}
	return s, nil
}
