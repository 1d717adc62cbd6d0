package types

// AttributeKey names a well-known attribute on a command context.
type AttributeKey string

// Well-known attribute keys. Plugin data uses the plugin side channel
// instead of inventing new keys.
const (
	AttrResult      AttributeKey = "result"
	AttrCommandType AttributeKey = "commandType"
	AttrEntityType  AttributeKey = "entityType"
	AttrShape       AttributeKey = "shape"
	AttrRecordID    AttributeKey = "recordId"
	AttrRejection   AttributeKey = "rejection"
)

// CommandContext is the unit of work handed through one execution. It is
// created per request, passed by pointer to every handler and strategy, and
// mutated in place; it is never shared between concurrent executions.
type CommandContext struct {
	EntityName string
	Data       *Payload
	Filter     Filter

	attrs  map[AttributeKey]any
	plugin map[string]any
}

// NewCommandContext creates a context for entity with optional data.
func NewCommandContext(entity string, data *Payload) *CommandContext {
	return &CommandContext{EntityName: entity, Data: data}
}

// WithFilter sets the filter and returns the context for chaining.
func (c *CommandContext) WithFilter(f Filter) *CommandContext {
	c.Filter = f
	return c
}

// Set stores a well-known attribute.
func (c *CommandContext) Set(key AttributeKey, value any) {
	if c.attrs == nil {
		c.attrs = make(map[AttributeKey]any)
	}
	c.attrs[key] = value
}

// Get returns a well-known attribute.
func (c *CommandContext) Get(key AttributeKey) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// SetPlugin stores plugin-defined data under an arbitrary key.
func (c *CommandContext) SetPlugin(key string, value any) {
	if c.plugin == nil {
		c.plugin = make(map[string]any)
	}
	c.plugin[key] = value
}

// Plugin returns plugin-defined data.
func (c *CommandContext) Plugin(key string) (any, bool) {
	v, ok := c.plugin[key]
	return v, ok
}

// PluginBool returns plugin data as a bool; missing or non-bool values are false.
func (c *CommandContext) PluginBool(key string) bool {
	v, _ := c.Plugin(key)
	b, _ := v.(bool)
	return b
}

// Result returns the strategy result stored by the engine.
func (c *CommandContext) Result() (any, bool) {
	return c.Get(AttrResult)
}

// CommandType returns the command type being executed.
func (c *CommandContext) CommandType() CommandType {
	v, _ := c.Get(AttrCommandType)
	ct, _ := v.(CommandType)
	return ct
}

// EntityType returns the entity type chosen by dispatch, if dispatch ran.
func (c *CommandContext) EntityType() (EntityType, bool) {
	v, ok := c.Get(AttrEntityType)
	if !ok {
		return EntityTypeCustom, false
	}
	t, ok := v.(EntityType)
	return t, ok
}

// Shape returns the entity shape resolved by dispatch, if dispatch ran.
func (c *CommandContext) Shape() (EntityShape, bool) {
	v, ok := c.Get(AttrShape)
	if !ok {
		return EntityShape{}, false
	}
	s, ok := v.(EntityShape)
	return s, ok
}

// SetRecordID sets the identifier a create should use.
func (c *CommandContext) SetRecordID(id string) {
	c.Set(AttrRecordID, id)
}

// RecordID returns the identifier a create should use, or "".
func (c *CommandContext) RecordID() string {
	v, _ := c.Get(AttrRecordID)
	s, _ := v.(string)
	return s
}

// Reject records why a handler refused the command. The handler still
// returns false to stop the chain.
func (c *CommandContext) Reject(reason string) {
	c.Set(AttrRejection, reason)
}

// Rejection returns the recorded rejection reason, or "".
func (c *CommandContext) Rejection() string {
	v, _ := c.Get(AttrRejection)
	s, _ := v.(string)
	return s
}
