package errors_test

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeRecursiveType, "record Node contains itself").
		WithDetail("record", "Node").
		WithDetail("path", "Node.next")

	fmt.Println(err.Error())

	// Output:
	// recursive_type: record Node contains itself
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	originalErr := io.ErrUnexpectedEOF

	err := errors.Wrap(originalErr, errors.ErrorTypeFile, "failed to read parquet footer").
		WithDetail("file", "people.parquet")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}

	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Original error was unexpected EOF")
	}

	// Output:
	// This is a file error
	// Original error was unexpected EOF
}

// ExampleErrorType demonstrates the build-time and read-time categories.
func ExampleErrorType() {
	mismatch := errors.Newf(errors.ErrorTypeSchemaMismatch, "field %q is OPTIONAL in the file", "id")
	fmt.Printf("Build error: %v (%t)\n", mismatch, errors.IsBuildError(mismatch))

	conversion := errors.New(errors.ErrorTypeValueConversion, "unknown symbol PURPLE for enum Color")
	fmt.Printf("Read error: %v (%t)\n", conversion, errors.IsBuildError(conversion))

	// Output:
	// Build error: schema_mismatch: field "id" is OPTIONAL in the file (true)
	// Read error: value_conversion: unknown symbol PURPLE for enum Color (false)
}

// ExampleTypeOf shows how foreign errors are categorized.
func ExampleTypeOf() {
	fmt.Println(errors.TypeOf(io.EOF))
	fmt.Println(errors.TypeOf(errors.New(errors.ErrorTypeConstruction, "no constructor")))

	// Output:
	// internal
	// construction
}
