package types

// ModelDefinition describes a model: a named property set that may inherit
// from a single parent model. Properties holds definitions authored locally
// on the model; ReferencedProperties lists the property IDs the model
// actually materialises. A referenced ID resolves to the local definition
// when one exists and to the property catalog otherwise.
type ModelDefinition struct {
	ID                   string               `json:"id" yaml:"id"`
	ExtendsModel         string               `json:"extends_model,omitempty" yaml:"extends_model,omitempty"`
	Abstract             bool                 `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Description          string               `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           []PropertyDefinition `json:"properties,omitempty" yaml:"properties,omitempty"`
	Components           []string             `json:"components,omitempty" yaml:"components,omitempty"`
	ReferencedProperties []string             `json:"referenced_properties,omitempty" yaml:"referenced_properties,omitempty"`
	ReferencedComponents []string             `json:"referenced_components,omitempty" yaml:"referenced_components,omitempty"`
}

// LocalProperty returns the locally declared definition for id.
func (m ModelDefinition) LocalProperty(id string) (PropertyDefinition, bool) {
	return findProperty(m.Properties, id)
}

// ComponentDefinition is a reusable, optionally inheriting bundle of
// properties that models compose by reference. Components nest through
// SubComponents.
type ComponentDefinition struct {
	ID                   string               `json:"id" yaml:"id"`
	ExtendsComponent     string               `json:"extends_component,omitempty" yaml:"extends_component,omitempty"`
	Description          string               `json:"description,omitempty" yaml:"description,omitempty"`
	Properties           []PropertyDefinition `json:"properties,omitempty" yaml:"properties,omitempty"`
	SubComponents        []string             `json:"sub_components,omitempty" yaml:"sub_components,omitempty"`
	ReferencedProperties []string             `json:"referenced_properties,omitempty" yaml:"referenced_properties,omitempty"`
}

// LocalProperty returns the locally declared definition for id.
func (c ComponentDefinition) LocalProperty(id string) (PropertyDefinition, bool) {
	return findProperty(c.Properties, id)
}

func findProperty(props []PropertyDefinition, id string) (PropertyDefinition, bool) {
	for _, p := range props {
		if p.ID == id {
			return p, true
		}
	}
	return PropertyDefinition{}, false
}

// Validation is the outcome of validating a model or component.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"` // Cause when not valid.
}
