// Package avro maps column schemas and column records to Avro, so record
// streams can be stored in Avro object container files and read back
// through the same converter trees as any other column source.
package avro

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// plan is the Avro mapping of one schema node.
type plan struct {
	node *schema.Node
	// value is the Avro type of one value of the node, ignoring its
	// repetition; branch names it inside unions.
	value  any
	branch string

	fields []*plan // records
	elem   *plan   // list elements
	level  schema.ListLevel
	key    *plan // map entries
	val    *plan
}

// slot returns the Avro type of the node as a field, list element or map
// value.
func (p *plan) slot() any {
	switch p.node.Repetition {
	case schema.Optional:
		return []any{"null", p.value}
	case schema.Repeated:
		return map[string]any{"type": "array", "items": p.value}
	default:
		return p.value
	}
}

type compiler struct {
	namespace string
}

func (c *compiler) fullName(name string) string {
	if c.namespace == "" {
		return name
	}
	return c.namespace + "." + name
}

func (c *compiler) record(name string, nodes []*schema.Node, path string) (*plan, error) {
	p := &plan{branch: c.fullName(name)}
	fields := make([]any, 0, len(nodes))
	for _, n := range nodes {
		fp, err := c.compile(n, name+"_"+sanitize(n.Name), path+"."+n.Name)
		if err != nil {
			return nil, err
		}
		p.fields = append(p.fields, fp)
		f := map[string]any{"name": sanitize(n.Name), "type": fp.slot()}
		switch n.Repetition {
		case schema.Optional:
			f["default"] = nil
		case schema.Repeated:
			f["default"] = []any{}
		}
		fields = append(fields, f)
	}
	rec := map[string]any{"type": "record", "name": name, "fields": fields}
	if c.namespace != "" {
		rec["namespace"] = c.namespace
	}
	p.value = rec
	return p, nil
}

// compile maps n. name is the Avro name given to records found at n.
func (c *compiler) compile(n *schema.Node, name, path string) (*plan, error) {
	if !n.Group {
		p := &plan{node: n}
		switch n.Type {
		case schema.Boolean:
			p.value = "boolean"
		case schema.Int32:
			p.value = "int"
		case schema.Int64:
			p.value = "long"
		case schema.Float:
			p.value = "float"
		case schema.Double:
			p.value = "double"
		case schema.Binary:
			if n.Logical == schema.String || n.Logical == schema.Enum {
				p.value = "string"
			} else {
				p.value = "bytes"
			}
		default:
			return nil, unsupported(path, "column type %s", n.Type)
		}
		p.branch = p.value.(string)
		return p, nil
	}

	switch n.Logical {
	case schema.List:
		elem, level, err := schema.ListElement(n)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedType, path)
		}
		ep, err := c.compile(elem, name+"_element", path+"."+elem.Name)
		if err != nil {
			return nil, err
		}
		items := ep.value
		if level == schema.ThreeLevel {
			items = ep.slot()
		}
		return &plan{node: n, elem: ep, level: level, branch: "array",
			value: map[string]any{"type": "array", "items": items}}, nil
	case schema.Map:
		key, value, err := schema.MapEntry(n)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedType, path)
		}
		if key.Type != schema.Binary || key.Logical == schema.None {
			return nil, unsupported(path, "map key of type %s, Avro maps have string keys", key.Type)
		}
		kp, err := c.compile(key, name+"_key", path+"."+key.Name)
		if err != nil {
			return nil, err
		}
		vp, err := c.compile(value, name+"_value", path+"."+value.Name)
		if err != nil {
			return nil, err
		}
		return &plan{node: n, key: kp, val: vp, branch: "map",
			value: map[string]any{"type": "map", "values": vp.slot()}}, nil
	case schema.None:
		p, err := c.record(name, n.Children, path)
		if err != nil {
			return nil, err
		}
		p.node = n
		return p, nil
	default:
		return nil, unsupported(path, "group annotation %s", n.Logical)
	}
}

func unsupported(path, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeUnsupportedType, path+": "+format, args...).WithDetail("path", path)
}

// sanitize makes name a valid Avro name.
func sanitize(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// Options configures the Avro mapping.
type Options struct {
	Namespace string
}

// Mapping is the Avro form of a column schema.
type Mapping struct {
	schema *schema.Schema
	root   *plan
	json   string
}

// NewMapping maps s. Columns without an Avro form, such as maps with
// non-string keys, fail with unsupported_type.
func NewMapping(s *schema.Schema, opts Options) (*Mapping, error) {
	c := &compiler{namespace: opts.Namespace}
	root, err := c.record(sanitize(s.Name), s.Fields, s.Name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(root.value)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode avro schema")
	}
	return &Mapping{schema: s, root: root, json: string(data)}, nil
}

// Schema returns the mapped column schema.
func (m *Mapping) Schema() *schema.Schema { return m.schema }

// JSON returns the Avro schema.
func (m *Mapping) JSON() string { return m.json }
