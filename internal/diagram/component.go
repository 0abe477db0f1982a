package diagram

import (
	"encoding/json"
	"strconv"
)

// TypeRegion is the type tag of the root container.
const TypeRegion = "region"

// Attribute keys shared by every kind.
const (
	AttrLabel  = "label"
	AttrRegion = "region"
)

// Component is a typed node in the diagram tree. Identity and type are fixed
// at construction; attributes are open. Container kinds own an ordered list
// of children.
type Component struct {
	id         string
	typ        string
	attributes map[string]any
	container  bool
	children   []*Component
}

// NewComponent returns a leaf component. attrs is deep-copied and numbers
// in it are stored as json.Number, the form they take after a JSON round trip.
func NewComponent(id, typ string, attrs map[string]any) *Component {
	return &Component{id: id, typ: typ, attributes: cloneMap(attrs)}
}

// NewContainer returns a component that can hold children.
func NewContainer(id, typ string, attrs map[string]any) *Component {
	c := NewComponent(id, typ, attrs)
	c.container = true
	return c
}

// NewRegion returns a region container with a display label and an AWS
// region name such as us-east-1.
func NewRegion(id, label, awsRegion string) *Component {
	attrs := map[string]any{AttrLabel: label}
	if awsRegion != "" {
		attrs[AttrRegion] = awsRegion
	}
	return NewContainer(id, TypeRegion, attrs)
}

func (c *Component) ID() string   { return c.id }
func (c *Component) Type() string { return c.typ }

// IsContainer reports whether c can hold children.
func (c *Component) IsContainer() bool { return c.container }

// Attributes returns the live attribute map.
func (c *Component) Attributes() map[string]any { return c.attributes }

// Attr returns a single attribute.
func (c *Component) Attr(key string) (any, bool) {
	v, ok := c.attributes[key]
	return v, ok
}

// SetAttr sets a single attribute.
func (c *Component) SetAttr(key string, v any) {
	c.attributes[key] = cloneValue(v)
}

// Label is the display name, or the id when unset.
func (c *Component) Label() string {
	if s := GetStr(c.attributes, AttrLabel); s != "" {
		return s
	}
	return c.id
}

// Children returns the direct children in display order. The slice must not
// be modified by the caller.
func (c *Component) Children() []*Component { return c.children }

// AddChild appends child to c. Duplicate ids are not checked here;
// Document.AddComponent does that.
func (c *Component) AddChild(child *Component) error {
	if !c.container {
		return ErrNotContainer
	}
	c.children = append(c.children, child)
	return nil
}

// removeChild removes the first direct child with the given id.
func (c *Component) removeChild(id string) (*Component, bool) {
	for i, ch := range c.children {
		if ch.id == id {
			c.children = append(c.children[:i:i], c.children[i+1:]...)
			return ch, true
		}
	}
	return nil, false
}

// Record projects c and its subtree into the JSON form.
func (c *Component) Record() NodeRecord {
	rec := NodeRecord{
		ID:         c.id,
		Type:       c.typ,
		Attributes: cloneMap(c.attributes),
	}
	if c.container && len(c.children) > 0 {
		rec.Children = make([]NodeRecord, len(c.children))
		for i, ch := range c.children {
			rec.Children[i] = ch.Record()
		}
	}
	return rec
}

// find performs a pre-order search of the subtree below c (c itself excluded).
func (c *Component) find(id string) *Component {
	for _, ch := range c.children {
		if ch.id == id {
			return ch
		}
		if found := ch.find(id); found != nil {
			return found
		}
	}
	return nil
}

// findContainer is like find but includes c and only matches containers.
func (c *Component) findContainer(id string) *Component {
	if !c.container {
		return nil
	}
	if c.id == id {
		return c
	}
	for _, ch := range c.children {
		if found := ch.findContainer(id); found != nil {
			return found
		}
	}
	return nil
}

// findParent returns the container directly holding id.
func (c *Component) findParent(id string) *Component {
	for _, ch := range c.children {
		if ch.id == id {
			return c
		}
		if p := ch.findParent(id); p != nil {
			return p
		}
	}
	return nil
}

// remove deletes the first direct child matching id anywhere in the subtree,
// stopping at the first removal.
func (c *Component) remove(id string) (*Component, bool) {
	if removed, ok := c.removeChild(id); ok {
		return removed, true
	}
	for _, ch := range c.children {
		if removed, ok := ch.remove(id); ok {
			return removed, true
		}
	}
	return nil, false
}

// walk visits c and its descendants in pre-order. Returning false from fn
// skips the node's subtree.
func (c *Component) walk(parent *Component, fn func(c, parent *Component) bool) {
	if !fn(c, parent) {
		return
	}
	for _, ch := range c.children {
		ch.walk(c, fn)
	}
}

// cloneMap deep-copies m into the JSON value space: objects become
// map[string]any, lists []any and numbers json.Number.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64))
	case float32:
		return json.Number(strconv.FormatFloat(float64(t), 'g', -1, 32))
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int8:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int16:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int32:
		return json.Number(strconv.FormatInt(int64(t), 10))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case uint:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint16:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return json.Number(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return json.Number(strconv.FormatUint(t, 10))
	default:
		return v
	}
}
