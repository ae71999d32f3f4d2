package typemodel

import (
	"fmt"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// Enum describes a closed set of symbols and how Go values of the enum map
// to and from those symbols.
type Enum struct {
	name     string
	symbols  []string
	ordinals map[string]int
	toSymbol func(any) (string, bool)
	fromSym  func(string) any
}

// NewEnum describes an enum whose Go representation is a string type. Values
// are stored as their symbol.
//
//	type Color string
//	colors := typemodel.NewEnum[Color]("Color", "RED", "GREEN", "BLUE")
func NewEnum[T ~string](name string, symbols ...T) *Enum {
	syms := make([]string, len(symbols))
	for i, s := range symbols {
		syms[i] = string(s)
	}
	return NewEnumFunc(name, syms,
		func(v any) (string, bool) {
			t, ok := v.(T)
			return string(t), ok
		},
		func(s string) any { return T(s) },
	)
}

// NewEnumFunc describes an enum with an arbitrary Go representation, such as
// an integer iota type with a String method.
func NewEnumFunc(name string, symbols []string, toSymbol func(any) (string, bool), fromSymbol func(string) any) *Enum {
	e := &Enum{
		name:     name,
		symbols:  append([]string(nil), symbols...),
		ordinals: make(map[string]int, len(symbols)),
		toSymbol: toSymbol,
		fromSym:  fromSymbol,
	}
	for i, s := range e.symbols {
		e.ordinals[s] = i
	}
	return e
}

func (e *Enum) Name() string { return e.name }

// Symbols returns a copy of the declared symbols in ordinal order.
func (e *Enum) Symbols() []string { return append([]string(nil), e.symbols...) }

// Ordinal returns the position of symbol, or -1.
func (e *Enum) Ordinal(symbol string) int {
	if i, ok := e.ordinals[symbol]; ok {
		return i
	}
	return -1
}

// Symbol returns the symbol of an enum value.
func (e *Enum) Symbol(v any) (string, error) {
	s, ok := e.toSymbol(v)
	if !ok {
		return "", errors.Newf(errors.ErrorTypeValueConversion,
			"value of type %T is not a %s", v, e.name)
	}
	if _, known := e.ordinals[s]; !known {
		return "", errors.Newf(errors.ErrorTypeValueConversion,
			"%q is not a symbol of enum %s", s, e.name).
			WithDetail("enum", e.name)
	}
	return s, nil
}

// Value returns the Go value for symbol. Symbols outside the enum fail with a
// value_conversion error.
func (e *Enum) Value(symbol string) (any, error) {
	if _, ok := e.ordinals[symbol]; !ok {
		return nil, errors.Newf(errors.ErrorTypeValueConversion,
			"%q is not a symbol of enum %s", symbol, e.name).
			WithDetail("enum", e.name).
			WithDetail("symbols", e.symbols)
	}
	return e.fromSym(symbol), nil
}

func (e *Enum) String() string {
	return fmt.Sprintf("enum %s%v", e.name, e.symbols)
}
