package schema

import (
	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// ListElement resolves the node that holds the elements of a collection
// column and the nesting it uses.
//
// A repeated node that is not annotated LIST is a one-level list and is its
// own element. A LIST group must have a single repeated child. When that
// child is an unannotated group with exactly one field, and is not named
// "array" or "<list>_tuple", it is the middle group of a three-level list
// and its field is the element. Otherwise the repeated child itself is the
// element of a two-level list.
func ListElement(n *Node) (*Node, ListLevel, error) {
	if !n.IsList() {
		if n.Repetition == Repeated {
			return n, OneLevel, nil
		}
		return nil, 0, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"column %s is %s %s, not a list", n.Name, n.Repetition, n.Kind())
	}
	if len(n.Children) != 1 || n.Children[0].Repetition != Repeated {
		return nil, 0, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"list %s must have exactly one repeated child", n.Name)
	}
	c := n.Children[0]
	if isMiddleGroup(n, c) {
		return c.Children[0], ThreeLevel, nil
	}
	return c, TwoLevel, nil
}

func isMiddleGroup(list, c *Node) bool {
	if !c.Group || c.Logical != None || len(c.Children) != 1 {
		return false
	}
	if c.Name == "array" || c.Name == list.Name+"_tuple" {
		return false
	}
	// A two-level list of single-field records names its repeated group
	// "element"; the middle group of a three-level list holds the element.
	if c.Name == "element" && c.Children[0].Name != "element" {
		return false
	}
	return true
}

// MapEntry resolves the key and value nodes of a MAP group.
func MapEntry(n *Node) (key, value *Node, err error) {
	if !n.IsMap() {
		return nil, nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"column %s is %s %s, not a map", n.Name, n.Repetition, n.Kind())
	}
	if len(n.Children) != 1 {
		return nil, nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"map %s must have exactly one key_value group", n.Name)
	}
	kv := n.Children[0]
	if !kv.Group || kv.Repetition != Repeated || len(kv.Children) != 2 {
		return nil, nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"map %s must hold a repeated group of key and value", n.Name)
	}
	key, value = kv.Children[0], kv.Children[1]
	if key.Repetition != Required || !key.IsPrimitive() {
		return nil, nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"map %s must have a required primitive key", n.Name)
	}
	return key, value, nil
}
