package schema

import (
	"github.com/goccy/go-json"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// jsonNode is the interchange form of a Node.
type jsonNode struct {
	Name       string      `json:"name"`
	Repetition string      `json:"repetition"`
	Kind       string      `json:"kind"`
	Type       string      `json:"type,omitempty"`
	Annotation string      `json:"annotation,omitempty"`
	Children   []*jsonNode `json:"children,omitempty"`
}

type jsonSchema struct {
	Name   string      `json:"name"`
	Fields []*jsonNode `json:"fields"`
}

// MarshalJSON encodes the schema in its interchange form.
func (s *Schema) MarshalJSON() ([]byte, error) {
	js := jsonSchema{Name: s.Name, Fields: make([]*jsonNode, len(s.Fields))}
	for i, f := range s.Fields {
		js.Fields[i] = toJSON(f)
	}
	return json.Marshal(js)
}

// UnmarshalJSON decodes the interchange form produced by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var js jsonSchema
	if err := json.Unmarshal(data, &js); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to decode schema")
	}
	fields := make([]*Node, len(js.Fields))
	for i, jn := range js.Fields {
		n, err := fromJSON(jn)
		if err != nil {
			return err
		}
		fields[i] = n
	}
	s.Name, s.Fields = js.Name, fields
	return nil
}

// ParseJSON decodes a schema from its interchange form.
func ParseJSON(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

func toJSON(n *Node) *jsonNode {
	jn := &jsonNode{
		Name:       n.Name,
		Repetition: n.Repetition.String(),
		Kind:       n.Kind(),
		Annotation: n.Logical.String(),
	}
	if !n.Group {
		jn.Type = n.Type.String()
		return jn
	}
	// list and map kinds already carry their annotation
	if n.Logical == List || n.Logical == Map {
		jn.Annotation = ""
	}
	jn.Children = make([]*jsonNode, len(n.Children))
	for i, c := range n.Children {
		jn.Children[i] = toJSON(c)
	}
	return jn
}

func fromJSON(jn *jsonNode) (*Node, error) {
	rep, ok := parseRepetition(jn.Repetition)
	if !ok {
		return nil, invalid(jn, "unknown repetition %q", jn.Repetition)
	}
	logical, ok := parseLogical(jn.Annotation)
	if !ok {
		return nil, invalid(jn, "unknown annotation %q", jn.Annotation)
	}

	switch jn.Kind {
	case "primitive":
		typ, ok := parsePrimitive(jn.Type)
		if !ok {
			return nil, invalid(jn, "unknown primitive type %q", jn.Type)
		}
		if len(jn.Children) > 0 {
			return nil, invalid(jn, "primitive node has children")
		}
		return NewPrimitive(jn.Name, rep, typ, logical), nil
	case "group", "list", "map":
		switch {
		case jn.Kind == "list":
			logical = List
		case jn.Kind == "map":
			logical = Map
		case logical != None:
			return nil, invalid(jn, "group cannot carry annotation %s", logical)
		}
		if len(jn.Children) == 0 {
			return nil, invalid(jn, "group has no children")
		}
		children := make([]*Node, len(jn.Children))
		for i, c := range jn.Children {
			n, err := fromJSON(c)
			if err != nil {
				return nil, err
			}
			children[i] = n
		}
		return NewGroup(jn.Name, rep, logical, children...), nil
	default:
		return nil, invalid(jn, "unknown node kind %q", jn.Kind)
	}
}

func invalid(jn *jsonNode, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeValidation, format, args...).WithDetail("node", jn.Name)
}

func parseRepetition(s string) (Repetition, bool) {
	for _, r := range []Repetition{Required, Optional, Repeated} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

func parsePrimitive(s string) (PrimitiveType, bool) {
	for i, name := range primitiveNames {
		if name == s {
			return PrimitiveType(i), true
		}
	}
	return 0, false
}

func parseLogical(s string) (LogicalType, bool) {
	for i, name := range logicalNames {
		if name == s {
			return LogicalType(i), true
		}
	}
	return 0, false
}
