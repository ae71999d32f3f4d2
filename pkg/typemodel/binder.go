package typemodel

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// ConstructFunc builds a record instance from positional arguments, one per
// field in declaration order. Absent values are untyped nil.
type ConstructFunc func(args []any) (any, error)

// Constructor is a registered construction function and its declared
// parameter types.
type Constructor struct {
	params    []*Type
	canonical bool
	fn        ConstructFunc
}

// Constructor registers a construction function taking params in order.
func (r *Record) Constructor(fn ConstructFunc, params ...*Type) *Record {
	r.ctors = append(r.ctors, &Constructor{params: params, fn: fn})
	return r
}

// Canonical registers a construction function whose parameters are exactly
// the record's fields.
func (r *Record) Canonical(fn ConstructFunc) *Record {
	r.ctors = append(r.ctors, &Constructor{canonical: true, fn: fn})
	return r
}

func (c *Constructor) matches(descs []FieldDescriptor) bool {
	if c.canonical {
		return true
	}
	if len(c.params) != len(descs) {
		return false
	}
	for i, p := range c.params {
		if !Equivalent(p, descs[i].Type) {
			return false
		}
	}
	return true
}

// ConstructorHandle is a constructor bound to a record type.
type ConstructorHandle struct {
	record *Record
	ctor   *Constructor
	arity  int
}

// Bind locates the single constructor of r whose parameter types match the
// field descriptors, boxed and unboxed scalars being interchangeable. It
// fails with a construction error when no constructor or more than one
// constructor matches.
func Bind(r *Record) (*ConstructorHandle, error) {
	descs, err := r.Descriptors()
	if err != nil {
		return nil, err
	}
	var found []*Constructor
	for _, c := range r.ctors {
		if c.matches(descs) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 1:
		return &ConstructorHandle{record: r, ctor: found[0], arity: len(descs)}, nil
	case 0:
		return nil, errors.Newf(errors.ErrorTypeConstruction,
			"no constructor of %s matches (%s)", r.name, signature(descs)).
			WithDetail("record", r.name)
	default:
		return nil, errors.Newf(errors.ErrorTypeConstruction,
			"%d constructors of %s match (%s)", len(found), r.name, signature(descs)).
			WithDetail("record", r.name)
	}
}

func signature(descs []FieldDescriptor) string {
	parts := make([]string, len(descs))
	for i, d := range descs {
		parts[i] = d.Type.String()
	}
	return strings.Join(parts, ", ")
}

func (h *ConstructorHandle) Record() *Record { return h.record }
func (h *ConstructorHandle) Arity() int      { return h.arity }

// Construct instantiates the record. Errors returned by the construction
// function and panics raised inside it are reported as construction errors.
func (h *ConstructorHandle) Construct(args []any) (inst any, err error) {
	if len(args) != h.arity {
		return nil, errors.Newf(errors.ErrorTypeConstruction,
			"%s takes %d arguments, got %d", h.record.name, h.arity, len(args))
	}
	defer func() {
		if p := recover(); p != nil {
			inst = nil
			err = errors.Wrap(fmt.Errorf("panic: %v", p), errors.ErrorTypeConstruction,
				fmt.Sprintf("failed to construct %s", h.record.name)).
				WithDetail("record", h.record.name)
		}
	}()
	inst, err = h.ctor.fn(args)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConstruction,
			fmt.Sprintf("failed to construct %s", h.record.name)).
			WithDetail("record", h.record.name)
	}
	return inst, nil
}
