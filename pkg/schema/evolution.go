package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// CompatibilityMode defines how schema changes are validated
type CompatibilityMode string

const (
	// CompatibilityNone allows any schema change
	CompatibilityNone CompatibilityMode = "NONE"
	// CompatibilityBackward ensures the new schema can read old data
	CompatibilityBackward CompatibilityMode = "BACKWARD"
	// CompatibilityForward ensures the old schema can read new data
	CompatibilityForward CompatibilityMode = "FORWARD"
	// CompatibilityFull ensures both directions
	CompatibilityFull CompatibilityMode = "FULL"
	// CompatibilityBackwardTransitive checks backward compatibility with
	// every previous version
	CompatibilityBackwardTransitive CompatibilityMode = "BACKWARD_TRANSITIVE"
)

// ParseCompatibilityMode parses a mode name (case insensitive). The empty
// string selects BACKWARD.
func ParseCompatibilityMode(s string) (CompatibilityMode, error) {
	mode := CompatibilityMode(strings.ToUpper(strings.TrimSpace(s)))
	switch mode {
	case "":
		return CompatibilityBackward, nil
	case CompatibilityNone, CompatibilityBackward, CompatibilityForward, CompatibilityFull, CompatibilityBackwardTransitive:
		return mode, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown compatibility mode %q", s)
	}
}

// ChangeType represents the type of schema change
type ChangeType string

const (
	ChangeTypeAddField         ChangeType = "ADD_FIELD"
	ChangeTypeRemoveField      ChangeType = "REMOVE_FIELD"
	ChangeTypeModifyType       ChangeType = "MODIFY_TYPE"
	ChangeTypeModifyRepetition ChangeType = "MODIFY_REPETITION"
)

// SchemaChange is one difference between two schema versions. Columns are
// named by their dotted path below the message.
type SchemaChange struct {
	Type     ChangeType `json:"type"`
	Path     string     `json:"path"`
	OldField string     `json:"old_field,omitempty"`
	NewField string     `json:"new_field,omitempty"`
}

func (c SchemaChange) String() string {
	switch c.Type {
	case ChangeTypeAddField:
		return fmt.Sprintf("%s %s: %s", c.Type, c.Path, c.NewField)
	case ChangeTypeRemoveField:
		return fmt.Sprintf("%s %s: %s", c.Type, c.Path, c.OldField)
	default:
		return fmt.Sprintf("%s %s: %s -> %s", c.Type, c.Path, c.OldField, c.NewField)
	}
}

// Diff lists the changes from old to new, sorted by type and path. A
// changed group is reported once, without descending into it, when its
// kind or annotation changed.
func Diff(old, new *Schema) []SchemaChange {
	var changes []SchemaChange
	diffNodes(&changes, "", old.Fields, new.Fields)
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Type != changes[j].Type {
			return changes[i].Type < changes[j].Type
		}
		return changes[i].Path < changes[j].Path
	})
	return changes
}

func describeField(n *Node) string {
	return strings.TrimSpace(strings.SplitN(n.String(), "\n", 2)[0])
}

func shape(n *Node) string {
	if n.Group {
		return n.Kind()
	}
	return describe(n)
}

func diffNodes(changes *[]SchemaChange, parent string, old, new []*Node) {
	for _, o := range old {
		if n, _ := lookup(new, o.Name); n == nil {
			*changes = append(*changes, SchemaChange{Type: ChangeTypeRemoveField, Path: parent + o.Name, OldField: describeField(o)})
		}
	}
	for _, n := range new {
		path := parent + n.Name
		o, _ := lookup(old, n.Name)
		if o == nil {
			*changes = append(*changes, SchemaChange{Type: ChangeTypeAddField, Path: path, NewField: describeField(n)})
			continue
		}
		if o.Repetition != n.Repetition {
			*changes = append(*changes, SchemaChange{Type: ChangeTypeModifyRepetition, Path: path,
				OldField: o.Repetition.String(), NewField: n.Repetition.String()})
		}
		if o.Group != n.Group || o.Logical != n.Logical || (!o.Group && o.Type != n.Type) {
			*changes = append(*changes, SchemaChange{Type: ChangeTypeModifyType, Path: path,
				OldField: shape(o), NewField: shape(n)})
			continue
		}
		if n.Group {
			diffNodes(changes, path+".", o.Children, n.Children)
		}
	}
}

// CheckCompatibility checks that new may follow old under mode.
// BACKWARD_TRANSITIVE only compares the two schemas; the registry applies
// it to every earlier version.
func CheckCompatibility(old, new *Schema, mode CompatibilityMode) error {
	switch mode {
	case CompatibilityNone:
		return nil
	case CompatibilityBackward, CompatibilityBackwardTransitive:
		return CanRead(new, old)
	case CompatibilityForward:
		return CanRead(old, new)
	case CompatibilityFull:
		if err := CanRead(new, old); err != nil {
			return err
		}
		return CanRead(old, new)
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown compatibility mode: %s", mode)
	}
}

// CanRead reports, as a schema_mismatch error, why data written with
// writer cannot be read with reader. Writer columns the reader does not
// name are ignored, and reader columns the writer lacks must not be
// REQUIRED. Primitive columns follow the strict numeric rules of the
// projection filter.
func CanRead(reader, writer *Schema) error {
	return canRead(reader.Name, reader.Fields, writer.Fields, false)
}

func canRead(path string, reader, writer []*Node, exact bool) error {
	for _, r := range reader {
		p := path + "." + r.Name
		w, _ := lookup(writer, r.Name)
		if w == nil {
			if exact || r.Repetition == Required {
				return evolutionMismatch(p, "column %s is missing from the written data", r.Name)
			}
			continue
		}
		if err := canReadNode(p, r, w); err != nil {
			return err
		}
	}
	return nil
}

func canReadNode(path string, r, w *Node) error {
	switch {
	case r.Repetition == Required && w.Repetition != Required:
		return evolutionMismatch(path, "required column %s cannot read %s data", r.Name, w.Repetition)
	case (r.Repetition == Repeated) != (w.Repetition == Repeated):
		return evolutionMismatch(path, "%s column %s cannot read %s data", r.Repetition, r.Name, w.Repetition)
	case r.Group != w.Group || (r.Group && r.Logical != w.Logical):
		return evolutionMismatch(path, "%s cannot read %s", r.Kind(), w.Kind())
	}
	if r.Group {
		// The shape of lists and maps is fixed: every level must be present.
		return canRead(path, r.Children, w.Children, r.Logical != None)
	}
	k, ok := readKind(r)
	if !ok || !Compatible(w.Type, w.Logical, k, true) {
		return evolutionMismatch(path, "%s column cannot read %s data", describe(r), describe(w))
	}
	return nil
}

// readKind returns the scalar kind a primitive column is read as.
func readKind(n *Node) (typemodel.Kind, bool) {
	for _, k := range []typemodel.Kind{
		typemodel.KindBool, typemodel.KindInt8, typemodel.KindInt16, typemodel.KindInt32, typemodel.KindInt64,
		typemodel.KindFloat32, typemodel.KindFloat64, typemodel.KindString, typemodel.KindBytes, typemodel.KindEnum,
	} {
		if prim, logical, _ := Physical(k); prim == n.Type && logical == n.Logical {
			return k, true
		}
	}
	return 0, false
}

func evolutionMismatch(path, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeSchemaMismatch, path+": "+format, args...).WithDetail("path", path)
}
