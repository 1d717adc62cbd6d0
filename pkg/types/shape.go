package types

// EntityShape is the resolved field layout of an entity for one execution.
// Strict shapes reject fields they do not declare; custom entities get a
// non-strict shape derived from their own payload.
type EntityShape struct {
	Entity string               `json:"entity"`
	Type   EntityType           `json:"type"`
	Fields []PropertyDefinition `json:"fields"`
	Strict bool                 `json:"strict"`
}

// Field returns the field definition for id.
func (s EntityShape) Field(id string) (PropertyDefinition, bool) {
	return findProperty(s.Fields, id)
}

// FieldIDs returns the field IDs in order.
func (s EntityShape) FieldIDs() []string {
	ids := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		ids[i] = f.ID
	}
	return ids
}
