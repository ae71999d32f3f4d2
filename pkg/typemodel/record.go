// Package typemodel describes record types without runtime reflection.
// Each Record is registered once with explicit field getters and
// constructors.
package typemodel

import (
	"fmt"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// Getter extracts a field value from a record instance. An untyped nil
// result means the field has no value.
type Getter func(instance any) any

// FieldOption configures a field at registration.
type FieldOption func(*field)

// Alias sets the column name used on the wire instead of the field name.
func Alias(name string) FieldOption {
	return func(f *field) { f.alias = name }
}

// NotNull declares that a reference-typed field never holds null.
func NotNull() FieldOption {
	return func(f *field) { f.notNull = true }
}

type field struct {
	name    string
	alias   string
	typ     *Type
	notNull bool
	get     Getter
}

// Naming selects how declared field names become column names when no
// alias is set.
type Naming int

const (
	// FieldName uses the declared name unchanged.
	FieldName Naming = iota
	// SnakeCase converts camelCase names to snake_case.
	SnakeCase
)

func (n Naming) String() string {
	if n == SnakeCase {
		return "SNAKE_CASE"
	}
	return "FIELD_NAME"
}

// Record is a registered composite type.
type Record struct {
	name   string
	fields []field
	ctors  []*Constructor

	once   sync.Once
	sealed bool
	descs  []FieldDescriptor
	err    error
}

// NewRecord starts the registration of a record type named name.
func NewRecord(name string) *Record {
	return &Record{name: name}
}

func (r *Record) Name() string   { return r.name }
func (r *Record) NumFields() int { return len(r.fields) }

// Field registers the next field. Fields must be registered before the
// record is first used to build a schema or tree.
func (r *Record) Field(name string, t *Type, get Getter, opts ...FieldOption) *Record {
	if r.sealed {
		panic(fmt.Sprintf("typemodel: field %s registered on %s after first use", name, r.name))
	}
	f := field{name: name, typ: t, get: get}
	for _, opt := range opts {
		opt(&f)
	}
	r.fields = append(r.fields, f)
	return r
}

// Descriptors returns the field descriptor table of r, in declaration order.
// The table is computed once and shared; callers must not modify it.
func (r *Record) Descriptors() ([]FieldDescriptor, error) {
	r.once.Do(func() {
		r.sealed = true
		r.descs, r.err = r.describe()
	})
	return r.descs, r.err
}

func (r *Record) describe() ([]FieldDescriptor, error) {
	descs := make([]FieldDescriptor, 0, len(r.fields))
	seen := make(map[string]string, len(r.fields))
	for i, f := range r.fields {
		if f.typ == nil {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"field %s.%s has no type", r.name, f.name)
		}
		el, err := parameterize(f.typ, f.typ.Nullable() && !f.notNull)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err),
				fmt.Sprintf("field %s.%s", r.name, f.name)).
				WithDetail("record", r.name).
				WithDetail("field", f.name)
		}
		d := FieldDescriptor{
			Name:    f.name,
			Alias:   f.alias,
			Index:   i,
			NotNull: !el.Nullable,
			Get:     f.get,
			Element: el,
		}
		if prev, dup := seen[d.WireName()]; dup {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"fields %s and %s of %s share column name %q", prev, f.name, r.name, d.WireName())
		}
		seen[d.WireName()] = f.name
		descs = append(descs, d)
	}
	return descs, nil
}

// FieldDescriptor is the resolved description of one record field.
type FieldDescriptor struct {
	Name  string
	Alias string
	// Index is the positional slot of the field in constructor arguments.
	Index   int
	NotNull bool
	Get     Getter
	*Element
}

// WireName is the alias if one is set, otherwise the declared name.
func (d FieldDescriptor) WireName() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Name
}

// Column returns the column name of the field under the naming strategy.
// Aliases are never renamed.
func (d FieldDescriptor) Column(naming Naming) string {
	if d.Alias != "" {
		return d.Alias
	}
	if naming == SnakeCase {
		return inflect.Underscore(d.Name)
	}
	return d.Name
}
