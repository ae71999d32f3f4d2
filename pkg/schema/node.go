// Package schema models column schemas and derives them from record types.
//
// A Schema is a tree of Nodes in the shape Parquet uses: primitive leaves
// carrying a physical type and groups carrying children, each with a
// repetition and an optional logical annotation. Builder produces a Schema
// from a typemodel.Record; Filter projects a stored Schema onto a record type
// for reading.
package schema

import (
	"fmt"
	"strings"
)

// Repetition of a node within its parent.
type Repetition int

const (
	Required Repetition = iota
	Optional
	Repeated
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return fmt.Sprintf("Repetition(%d)", int(r))
	}
}

// repetitionOf maps field nullability to a repetition.
func repetitionOf(nullable bool) Repetition {
	if nullable {
		return Optional
	}
	return Required
}

// PrimitiveType is the physical type of a leaf column.
type PrimitiveType int

const (
	Int32 PrimitiveType = iota
	Int64
	Float
	Double
	Boolean
	Binary
)

var primitiveNames = [...]string{
	Int32:   "int32",
	Int64:   "int64",
	Float:   "float",
	Double:  "double",
	Boolean: "boolean",
	Binary:  "binary",
}

func (p PrimitiveType) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("PrimitiveType(%d)", int(p))
	}
	return primitiveNames[p]
}

// LogicalType annotates how a node is interpreted.
type LogicalType int

const (
	None LogicalType = iota
	String
	Enum
	List
	Map
	Int8
	Int16
)

var logicalNames = [...]string{
	None:   "",
	String: "STRING",
	Enum:   "ENUM",
	List:   "LIST",
	Map:    "MAP",
	Int8:   "INT(8)",
	Int16:  "INT(16)",
}

func (l LogicalType) String() string {
	if l < 0 || int(l) >= len(logicalNames) {
		return fmt.Sprintf("LogicalType(%d)", int(l))
	}
	return logicalNames[l]
}

// Node is one field of a schema tree. Nodes are not modified once a schema
// is built; projections create new group nodes and share unchanged leaves.
type Node struct {
	Name       string
	Repetition Repetition
	// Group distinguishes groups from primitive leaves. Type is only
	// meaningful on leaves, Children only on groups.
	Group    bool
	Type     PrimitiveType
	Logical  LogicalType
	Children []*Node
}

// NewPrimitive returns a leaf node.
func NewPrimitive(name string, rep Repetition, typ PrimitiveType, logical LogicalType) *Node {
	return &Node{Name: name, Repetition: rep, Type: typ, Logical: logical}
}

// NewGroup returns a group node.
func NewGroup(name string, rep Repetition, logical LogicalType, children ...*Node) *Node {
	return &Node{Name: name, Repetition: rep, Group: true, Logical: logical, Children: children}
}

func (n *Node) IsPrimitive() bool { return !n.Group }
func (n *Node) IsList() bool      { return n.Group && n.Logical == List }
func (n *Node) IsMap() bool       { return n.Group && n.Logical == Map }

// Kind names the node shape: primitive, group, list or map.
func (n *Node) Kind() string {
	switch {
	case !n.Group:
		return "primitive"
	case n.Logical == List:
		return "list"
	case n.Logical == Map:
		return "map"
	default:
		return "group"
	}
}

// Child returns the child named name and its position, or nil and -1.
func (n *Node) Child(name string) (*Node, int) {
	return lookup(n.Children, name)
}

func lookup(nodes []*Node, name string) (*Node, int) {
	for i, c := range nodes {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// Equal reports whether two nodes describe the same tree.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Name != o.Name || n.Repetition != o.Repetition || n.Group != o.Group || n.Logical != o.Logical {
		return false
	}
	if !n.Group {
		return n.Type == o.Type
	}
	return equalNodes(n.Children, o.Children)
}

func equalNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Schema is the message root: a name and its top level fields.
type Schema struct {
	Name   string
	Fields []*Node
}

// Field returns the top level field named name and its position.
func (s *Schema) Field(name string) (*Node, int) {
	return lookup(s.Fields, name)
}

// Equal reports whether two schemas are structurally identical.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Name == o.Name && equalNodes(s.Fields, o.Fields)
}

// String renders the schema in the Parquet message notation.
func (s *Schema) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "message %s {\n", s.Name)
	for _, f := range s.Fields {
		writeNode(&sb, f, 1)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (n *Node) String() string {
	var sb strings.Builder
	writeNode(&sb, n, 0)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	rep := strings.ToLower(n.Repetition.String())
	if n.Group {
		fmt.Fprintf(sb, "%s%s group %s", indent, rep, n.Name)
	} else {
		fmt.Fprintf(sb, "%s%s %s %s", indent, rep, n.Type, n.Name)
	}
	if n.Logical != None {
		fmt.Fprintf(sb, " (%s)", n.Logical)
	}
	if !n.Group {
		sb.WriteString(";\n")
		return
	}
	sb.WriteString(" {\n")
	for _, c := range n.Children {
		writeNode(sb, c, depth+1)
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}
