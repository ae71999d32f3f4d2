// Package columnio defines the event protocol between record trees and
// column storage engines.
//
// A repeated field emits all of its values between a single
// StartField/EndField pair. Fields without values are omitted; an empty
// StartField/EndField pair is invalid.
package columnio

// RecordConsumer receives the write events of one record stream.
type RecordConsumer interface {
	StartMessage()
	EndMessage()
	StartField(name string, index int)
	EndField(name string, index int)
	StartGroup()
	EndGroup()
	AddBoolean(v bool)
	AddInteger(v int32)
	AddLong(v int64)
	AddFloat(v float32)
	AddDouble(v float64)
	AddBinary(v []byte)
}

// Converter is a node of a read tree.
type Converter interface {
	IsPrimitive() bool
}

// GroupConverter receives the events of a group: the message root, a
// nested record, or a structural list or map group.
type GroupConverter interface {
	Converter
	// Child returns the converter of the field at position i of the
	// requested group.
	Child(i int) Converter
	Start()
	End()
}

// PrimitiveConverter receives leaf values.
type PrimitiveConverter interface {
	Converter
	AddBoolean(v bool)
	AddInt(v int32)
	AddLong(v int64)
	AddFloat(v float32)
	AddDouble(v float64)
	AddBinary(v []byte)

	// HasDictionarySupport reports whether the converter accepts dictionary
	// ids for its column instead of decoded values.
	HasDictionarySupport() bool
	// SetDictionary is called once per dictionary before any id of it is
	// delivered.
	SetDictionary(d Dictionary)
	AddValueFromDictionary(id int)
}

// Dictionary maps dictionary ids of a binary column to values.
type Dictionary interface {
	Len() int
	Binary(id int) []byte
}
