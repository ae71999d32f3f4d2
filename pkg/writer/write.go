package writer

import (
	"fmt"

	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// Write emits the events of one record value into c. A value that cannot
// be written fails with schema_mismatch (null in a REQUIRED column),
// unsupported_type (null element in a list that cannot express it) or
// value_conversion. On failure c may have received a partial record; the
// next StartMessage begins a new one.
func (w *RecordWriter) Write(c columnio.RecordConsumer, value any) (err error) {
	if value == nil {
		return errors.Newf(errors.ErrorTypeValidation, "cannot write a nil %s", w.record.Name())
	}
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf(errors.ErrorTypeValueConversion, "failed to read %s: %v", w.record.Name(), p).
				WithDetail("record", w.record.Name())
		}
	}()
	c.StartMessage()
	if err := w.root.write(c, value); err != nil {
		return err
	}
	c.EndMessage()
	return nil
}

func (g *groupWriter) write(c columnio.RecordConsumer, inst any) error {
	for i := range g.fields {
		f := &g.fields[i]
		if err := writeSlot(c, f.name, f.index, f.required, f.value, f.get(inst)); err != nil {
			return err
		}
	}
	return nil
}

// writeSlot writes v as the only content of field (name, index), or omits
// the field when v is null. One-level lists spread their elements over the
// repeated field instead.
func writeSlot(c columnio.RecordConsumer, name string, index int, required bool, vw *valueWriter, v any) error {
	if v == nil {
		if required {
			return mismatch(vw.path, "null value for required column %s", name)
		}
		return nil
	}
	if vw.kind == listWriter && vw.level == schema.OneLevel {
		items, err := toItems(vw.path, v)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		c.StartField(name, index)
		for _, item := range items {
			if item == nil {
				return nullElement(vw.path, "one-level")
			}
			if err := vw.elem.write(c, item); err != nil {
				return err
			}
		}
		c.EndField(name, index)
		return nil
	}
	c.StartField(name, index)
	if err := vw.write(c, v); err != nil {
		return err
	}
	c.EndField(name, index)
	return nil
}

func (vw *valueWriter) write(c columnio.RecordConsumer, v any) error {
	switch vw.kind {
	case scalarWriter:
		return vw.writeScalar(c, v)
	case recordWriter:
		c.StartGroup()
		if err := vw.group.write(c, v); err != nil {
			return err
		}
		c.EndGroup()
		return nil
	case listWriter:
		return vw.writeList(c, v)
	case mapWriter:
		return vw.writeMap(c, v)
	default:
		return errors.Newf(errors.ErrorTypeInternal, "%s: unknown writer", vw.path)
	}
}

func (vw *valueWriter) writeList(c columnio.RecordConsumer, v any) error {
	items, err := toItems(vw.path, v)
	if err != nil {
		return err
	}
	c.StartGroup()
	if len(items) > 0 {
		if vw.level == schema.TwoLevel {
			if err := vw.twoLevel(c, items); err != nil {
				return err
			}
		} else if err := vw.threeLevel(c, items); err != nil {
			return err
		}
	}
	c.EndGroup()
	return nil
}

func (vw *valueWriter) twoLevel(c columnio.RecordConsumer, items []any) error {
	c.StartField(vw.elemName, 0)
	for _, item := range items {
		if item == nil {
			return nullElement(vw.path, "two-level")
		}
		if err := vw.elem.write(c, item); err != nil {
			return err
		}
	}
	c.EndField(vw.elemName, 0)
	return nil
}

func (vw *valueWriter) threeLevel(c columnio.RecordConsumer, items []any) error {
	c.StartField(vw.mid, 0)
	for _, item := range items {
		c.StartGroup()
		if err := writeSlot(c, vw.elemName, 0, vw.elemRequired, vw.elem, item); err != nil {
			return err
		}
		c.EndGroup()
	}
	c.EndField(vw.mid, 0)
	return nil
}

func (vw *valueWriter) writeMap(c columnio.RecordConsumer, v any) error {
	entries, err := toEntries(vw.path, v)
	if err != nil {
		return err
	}
	c.StartGroup()
	if len(entries) > 0 {
		c.StartField(vw.entry, 0)
		for _, e := range entries {
			if e.key == nil {
				return mismatch(vw.path, "null map key")
			}
			c.StartGroup()
			if err := writeSlot(c, vw.keyName, 0, true, vw.key, e.key); err != nil {
				return err
			}
			if err := writeSlot(c, vw.valueName, 1, vw.valueRequired, vw.value, e.value); err != nil {
				return err
			}
			c.EndGroup()
		}
		c.EndField(vw.entry, 0)
	}
	c.EndGroup()
	return nil
}

func (vw *valueWriter) writeScalar(c columnio.RecordConsumer, v any) error {
	switch vw.prim {
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return vw.conversion(v)
		}
		c.AddBoolean(b)
	case schema.Int32:
		n, ok := toInt64(v)
		if !ok {
			return vw.conversion(v)
		}
		if n < minInt32 || n > maxInt32 {
			return errors.Newf(errors.ErrorTypeValueConversion, "%s: %d overflows int32", vw.path, n).
				WithDetail("path", vw.path)
		}
		c.AddInteger(int32(n))
	case schema.Int64:
		n, ok := toInt64(v)
		if !ok {
			return vw.conversion(v)
		}
		c.AddLong(n)
	case schema.Float:
		f, ok := toFloat64(v)
		if !ok {
			return vw.conversion(v)
		}
		c.AddFloat(float32(f))
	case schema.Double:
		f, ok := toFloat64(v)
		if !ok {
			return vw.conversion(v)
		}
		c.AddDouble(f)
	case schema.Binary:
		b, err := vw.binary(v)
		if err != nil {
			return err
		}
		c.AddBinary(b)
	default:
		return vw.conversion(v)
	}
	return nil
}

func (vw *valueWriter) binary(v any) ([]byte, error) {
	if vw.enum != nil {
		sym, err := vw.enum.Symbol(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValueConversion, vw.path).WithDetail("path", vw.path)
		}
		return []byte(sym), nil
	}
	switch b := v.(type) {
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	default:
		return nil, vw.conversion(v)
	}
}

func (vw *valueWriter) conversion(v any) error {
	return errors.Newf(errors.ErrorTypeValueConversion, "%s: cannot write %T as %s", vw.path, v, vw.source).
		WithDetail("path", vw.path).
		WithDetail("value", fmt.Sprint(v))
}

func nullElement(path, level string) error {
	return errors.Newf(errors.ErrorTypeUnsupportedType,
		"%s: null list element cannot be written with %s lists", path, level).
		WithDetail("path", path)
}
