// Package hclfile stores trees as HCL configuration files.
//
// Top level keys which are valid identifiers become attributes. Other
// keys are written as blocks:
//
//	entry "key with spaces" {
//	  value = 3
//	}
//
// On load any other block nests its body under its type and labels, so
//
//	detector "tpc" { gain = 2 }
//
// reads as {"detector": {"tpc": {"gain": 2}}}.
package hclfile

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/backend/filestore"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
	"github.com/zclconf/go-cty/cty"
)

const (
	Name = "hcl"

	// EntryBlock is the block type holding keys which are not
	// identifiers.
	EntryBlock = "entry"
)

var ErrUnsupported = errors.New("unsupported hcl value")

type Codec struct{}

func (Codec) Name() string { return Name }

func (Codec) Encode(e *entry.Entry) ([]byte, error) {
	v, err := jsonany.ToAny(e)
	if err != nil {
		return nil, err
	}
	f := hclwrite.NewEmptyFile()
	if v == nil {
		return f.Bytes(), nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: hcl documents hold objects, not %s", entry.ErrTypeMismatch, e.Type())
	}
	body := f.Body()
	keys := sortedKeys(m)
	for _, k := range keys {
		cv, err := toCty(m[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if hclsyntax.ValidIdentifier(k) {
			body.SetAttributeValue(k, cv)
			continue
		}
		blk := body.AppendNewBlock(EntryBlock, []string{k})
		blk.Body().SetAttributeValue("value", cv)
	}
	return f.Bytes(), nil
}

func (Codec) Decode(data []byte, into *entry.Entry) error {
	f, diags := hclsyntax.ParseConfig(data, "doc.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return diags
	}
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("%w: body %T", ErrUnsupported, f.Body)
	}
	m := map[string]any{}
	if err := decodeBody(body, m, true); err != nil {
		return err
	}
	return jsonany.FromAny(m, into)
}

func decodeBody(body *hclsyntax.Body, m map[string]any, top bool) error {
	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		v, err := attrValue(body.Attributes[name])
		if err != nil {
			return err
		}
		m[name] = v
	}
	for _, blk := range body.Blocks {
		if top && blk.Type == EntryBlock && len(blk.Labels) == 1 {
			var v any
			if attr, ok := blk.Body.Attributes["value"]; ok {
				var err error
				if v, err = attrValue(attr); err != nil {
					return err
				}
			}
			m[blk.Labels[0]] = v
			continue
		}
		cur := m
		for _, k := range append([]string{blk.Type}, blk.Labels...) {
			next, ok := cur[k].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[k] = next
			}
			cur = next
		}
		if err := decodeBody(blk.Body, cur, false); err != nil {
			return err
		}
	}
	return nil
}

func attrValue(attr *hclsyntax.Attribute) (any, error) {
	v, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return fromCty(v)
}

func fromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("%w: unknown value", ErrUnsupported)
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		return fromNumber(v.AsBigFloat()), nil
	case ty.IsObjectType() || ty.IsMapType():
		res := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			a, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			res[k.AsString()] = a
		}
		return res, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		res := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			a, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			res = append(res, a)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, ty.FriendlyName())
}

func fromNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		vals := make(map[string]cty.Value, len(x))
		for k, ev := range x {
			cv, err := toCty(ev)
			if err != nil {
				return cty.NilVal, err
			}
			vals[k] = cv
		}
		return cty.ObjectVal(vals), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(x))
		for i, ev := range x {
			cv, err := toCty(ev)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return cty.TupleVal(vals), nil
	}
	return cty.NilVal, fmt.Errorf("%w: %T", ErrUnsupported, v)
}

func sortedKeys(m map[string]any) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}

// Register adds the hcl backend to reg.
func Register(reg *backend.Registry, opts ...filestore.Option) error {
	return reg.Register(Name, filestore.Factory(Codec{}, opts...))
}
