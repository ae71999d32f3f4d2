package avro

import (
	"maps"
	"slices"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// toRecord converts a stored record group to goavro native form.
func (p *plan) toRecord(g *columnio.Group) (map[string]any, error) {
	out := make(map[string]any, len(p.fields))
	for i, fp := range p.fields {
		v, err := fp.toSlot(g.Values(i))
		if err != nil {
			return nil, err
		}
		out[sanitize(fp.node.Name)] = v
	}
	return out, nil
}

func (p *plan) toSlot(values []any) (any, error) {
	switch p.node.Repetition {
	case schema.Optional:
		if len(values) == 0 {
			return nil, nil
		}
		v, err := p.toValue(values[0])
		if err != nil {
			return nil, err
		}
		return goavro.Union(p.branch, v), nil
	case schema.Repeated:
		items := make([]any, len(values))
		for i, v := range values {
			item, err := p.toValue(v)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	default:
		if len(values) == 0 {
			return nil, errors.Newf(errors.ErrorTypeValidation, "required column %s has no value", p.node.Name)
		}
		return p.toValue(values[0])
	}
}

func (p *plan) toValue(v any) (any, error) {
	switch {
	case !p.node.Group:
		if p.value == "string" {
			return string(v.([]byte)), nil
		}
		return v, nil
	case p.elem != nil:
		lg := v.(*columnio.Group)
		items := make([]any, 0, len(lg.Values(0)))
		for _, x := range lg.Values(0) {
			var (
				item any
				err  error
			)
			if p.level == schema.ThreeLevel {
				item, err = p.elem.toSlot(x.(*columnio.Group).Values(0))
			} else {
				item, err = p.elem.toValue(x)
			}
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case p.key != nil:
		mg := v.(*columnio.Group)
		out := make(map[string]any, len(mg.Values(0)))
		for _, x := range mg.Values(0) {
			kv := x.(*columnio.Group)
			val, err := p.val.toSlot(kv.Values(1))
			if err != nil {
				return nil, err
			}
			out[string(kv.Values(0)[0].([]byte))] = val
		}
		return out, nil
	default:
		return p.toRecord(v.(*columnio.Group))
	}
}

// fromRecord converts a goavro native record to a record group.
func (p *plan) fromRecord(native any) (*columnio.Group, error) {
	m, ok := native.(map[string]any)
	if !ok {
		return nil, unexpected(p, native)
	}
	g := columnio.NewGroup(len(p.fields))
	for i, fp := range p.fields {
		if err := fp.fromSlot(g, i, m[sanitize(fp.node.Name)]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// fromSlot adds the values of native to field i of g.
func (p *plan) fromSlot(g *columnio.Group, i int, native any) error {
	switch p.node.Repetition {
	case schema.Optional:
		if native == nil {
			return nil
		}
		union, ok := native.(map[string]any)
		if !ok || len(union) != 1 {
			return unexpected(p, native)
		}
		for _, v := range union {
			native = v
		}
	case schema.Repeated:
		items, ok := native.([]any)
		if !ok {
			return unexpected(p, native)
		}
		for _, item := range items {
			v, err := p.fromValue(item)
			if err != nil {
				return err
			}
			g.Add(i, v)
		}
		return nil
	default:
		if native == nil {
			return unexpected(p, native)
		}
	}
	v, err := p.fromValue(native)
	if err != nil {
		return err
	}
	g.Add(i, v)
	return nil
}

func (p *plan) fromValue(native any) (any, error) {
	switch {
	case !p.node.Group:
		return p.fromPrimitive(native)
	case p.elem != nil:
		items, ok := native.([]any)
		if !ok {
			return nil, unexpected(p, native)
		}
		lg := columnio.NewGroup(1)
		for _, item := range items {
			if p.level == schema.ThreeLevel {
				mid := columnio.NewGroup(1)
				if err := p.elem.fromSlot(mid, 0, item); err != nil {
					return nil, err
				}
				lg.Add(0, mid)
				continue
			}
			v, err := p.elem.fromValue(item)
			if err != nil {
				return nil, err
			}
			lg.Add(0, v)
		}
		return lg, nil
	case p.key != nil:
		entries, ok := native.(map[string]any)
		if !ok {
			return nil, unexpected(p, native)
		}
		mg := columnio.NewGroup(1)
		for _, k := range slices.Sorted(maps.Keys(entries)) {
			kv := columnio.NewGroup(2)
			kv.Add(0, []byte(k))
			if err := p.val.fromSlot(kv, 1, entries[k]); err != nil {
				return nil, err
			}
			mg.Add(0, kv)
		}
		return mg, nil
	default:
		return p.fromRecord(native)
	}
}

func (p *plan) fromPrimitive(native any) (any, error) {
	var (
		v  any
		ok bool
	)
	switch p.node.Type {
	case schema.Boolean:
		v, ok = native.(bool)
	case schema.Int32:
		v, ok = native.(int32)
	case schema.Int64:
		v, ok = native.(int64)
	case schema.Float:
		v, ok = native.(float32)
	case schema.Double:
		v, ok = native.(float64)
	case schema.Binary:
		switch b := native.(type) {
		case string:
			v, ok = []byte(b), true
		case []byte:
			v, ok = b, true
		}
	}
	if !ok {
		return nil, unexpected(p, native)
	}
	return v, nil
}

func unexpected(p *plan, native any) *errors.Error {
	name := "record"
	if p.node != nil {
		name = p.node.Name
	}
	return errors.Newf(errors.ErrorTypeFile, "unexpected avro value %T for column %s", native, name)
}
