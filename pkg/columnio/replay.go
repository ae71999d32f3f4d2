package columnio

import (
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// ReplayOptions configures Replay.
type ReplayOptions struct {
	// Dictionary delivers binary values as dictionary ids to converters
	// that support dictionaries.
	Dictionary bool
}

type replayer struct {
	opts  ReplayOptions
	dicts map[*schema.Node]*BinaryDictionary
	set   map[*schema.Node]bool
}

// Replay feeds every stored record into root. requested must be the store
// schema or a projection of it: fields are matched by name, level by
// level, and converters are addressed by their position in requested.
// each is called after every record, once root.End has returned.
func (s *MemoryStore) Replay(requested *schema.Schema, root GroupConverter, opts ReplayOptions, each func() error) error {
	if err := checkProjection(requested.Fields, s.schema.Fields, requested.Name); err != nil {
		return err
	}
	records := s.Records()
	r := &replayer{opts: opts, set: make(map[*schema.Node]bool)}
	if opts.Dictionary {
		r.dicts = make(map[*schema.Node]*BinaryDictionary)
		for _, rec := range records {
			r.collect(rec, requested.Fields, s.schema.Fields)
		}
	}

	for _, rec := range records {
		root.Start()
		if err := r.group(rec, requested.Fields, s.schema.Fields, root); err != nil {
			return err
		}
		root.End()
		if each != nil {
			if err := each(); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkProjection(requested, stored []*schema.Node, path string) error {
	for _, rn := range requested {
		fn, _ := find(stored, rn.Name)
		if fn == nil {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"requested column %s.%s is not stored", path, rn.Name)
		}
		if rn.Group != fn.Group || rn.Repetition != fn.Repetition || (!rn.Group && rn.Type != fn.Type) {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"requested column %s.%s does not match the stored column", path, rn.Name)
		}
		if rn.Group {
			if err := checkProjection(rn.Children, fn.Children, path+"."+rn.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func find(nodes []*schema.Node, name string) (*schema.Node, int) {
	for i, n := range nodes {
		if n.Name == name {
			return n, i
		}
	}
	return nil, -1
}

// collect adds the binary values of g to the column dictionaries.
func (r *replayer) collect(g *Group, requested, stored []*schema.Node) {
	for _, rn := range requested {
		fn, fi := find(stored, rn.Name)
		for _, v := range g.Values(fi) {
			switch {
			case rn.Group:
				r.collect(v.(*Group), rn.Children, fn.Children)
			case fn.Type == schema.Binary:
				d := r.dicts[fn]
				if d == nil {
					d = NewBinaryDictionary()
					r.dicts[fn] = d
				}
				d.Add(v.([]byte))
			}
		}
	}
}

func (r *replayer) group(g *Group, requested, stored []*schema.Node, conv GroupConverter) error {
	for i, rn := range requested {
		fn, fi := find(stored, rn.Name)
		values := g.Values(fi)
		if len(values) == 0 {
			continue
		}
		child := conv.Child(i)
		for _, v := range values {
			if rn.Group {
				gc, ok := child.(GroupConverter)
				if !ok {
					return errors.Newf(errors.ErrorTypeInternal, "converter for group %s is not a group converter", rn.Name)
				}
				gc.Start()
				if err := r.group(v.(*Group), rn.Children, fn.Children, gc); err != nil {
					return err
				}
				gc.End()
				continue
			}
			pc, ok := child.(PrimitiveConverter)
			if !ok {
				return errors.Newf(errors.ErrorTypeInternal, "converter for column %s is not a primitive converter", rn.Name)
			}
			r.primitive(fn, pc, v)
		}
	}
	return nil
}

func (r *replayer) primitive(col *schema.Node, pc PrimitiveConverter, v any) {
	switch v := v.(type) {
	case bool:
		pc.AddBoolean(v)
	case int32:
		pc.AddInt(v)
	case int64:
		pc.AddLong(v)
	case float32:
		pc.AddFloat(v)
	case float64:
		pc.AddDouble(v)
	case []byte:
		d := r.dicts[col]
		if d == nil || !pc.HasDictionarySupport() {
			pc.AddBinary(v)
			return
		}
		if !r.set[col] {
			pc.SetDictionary(d)
			r.set[col] = true
		}
		id, _ := d.ID(v)
		pc.AddValueFromDictionary(id)
	}
}
