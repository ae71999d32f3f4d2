package schema

import (
	"strings"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// ListLevel selects how collections are nested in the schema.
type ListLevel int

const (
	// OneLevel repeats the field itself. It cannot express null elements,
	// nested collections, or the difference between null and empty.
	OneLevel ListLevel = iota + 1
	// TwoLevel wraps a repeated "element" in a LIST group. Elements cannot
	// be null.
	TwoLevel
	// ThreeLevel wraps a repeated "list" group holding an "element" in a
	// LIST group. It supports null elements and any nesting depth.
	ThreeLevel
)

func (l ListLevel) String() string {
	switch l {
	case OneLevel:
		return "ONE"
	case TwoLevel:
		return "TWO"
	case ThreeLevel:
		return "THREE"
	default:
		return "UNSET"
	}
}

// ParseListLevel parses ONE, TWO or THREE (case insensitive).
func ParseListLevel(s string) (ListLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ONE", "1":
		return OneLevel, nil
	case "TWO", "2":
		return TwoLevel, nil
	case "THREE", "3", "":
		return ThreeLevel, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "unknown list level %q", s)
	}
}

// ParseNaming parses FIELD_NAME or SNAKE_CASE (case insensitive).
func ParseNaming(s string) (typemodel.Naming, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIELD_NAME", "":
		return typemodel.FieldName, nil
	case "SNAKE_CASE":
		return typemodel.SnakeCase, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "unknown column naming %q", s)
	}
}

// BuildOptions configures schema generation.
type BuildOptions struct {
	Level  ListLevel
	Naming typemodel.Naming
}

// DefaultBuildOptions uses three-level lists and field names as columns.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{Level: ThreeLevel, Naming: typemodel.FieldName}
}

func (o BuildOptions) level() ListLevel {
	if o.Level == 0 {
		return ThreeLevel
	}
	return o.Level
}

// FilterOptions configures read projection.
type FilterOptions struct {
	// IgnoreUnknownFields skips record fields that have no column in the
	// file instead of failing.
	IgnoreUnknownFields bool
	// StrictNumericTypes rejects narrowing numeric conversions.
	StrictNumericTypes bool
	// AllowMissingFields reads record fields absent from the file as null
	// instead of failing.
	AllowMissingFields bool
	Naming             typemodel.Naming
}

// DefaultFilterOptions skips fields the file lacks and allows narrowing.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{IgnoreUnknownFields: true}
}
