package jsonany

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/signadot/spdb/entry"
)

// number converts the numeric types produced by JSON and YAML decoders.
func number(v any) (entry.Scalar, error) {
	switch x := v.(type) {
	case int:
		return entry.Int(int64(x)), nil
	case int64:
		return entry.Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return entry.Float(float64(x)), nil
		}
		return entry.Int(int64(x)), nil
	case float64:
		return entry.Float(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return entry.Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return entry.Scalar{}, err
		}
		return entry.Float(f), nil
	}
	return entry.Scalar{}, fmt.Errorf("%T is not a number", v)
}

func toFloat(v any) (float64, error) {
	s, err := number(v)
	if err != nil {
		return 0, err
	}
	if i, err := s.AsInt(); err == nil {
		return float64(i), nil
	}
	return s.AsFloat()
}

func floats(v any, n int) ([]float64, error) {
	xs, ok := v.([]any)
	if !ok || len(xs) != n {
		return nil, fmt.Errorf("want %d numbers, have %v", n, v)
	}
	res := make([]float64, n)
	for i, x := range xs {
		f, err := toFloat(x)
		if err != nil {
			return nil, err
		}
		res[i] = f
	}
	return res, nil
}

func ints(v any, n int) ([]int64, error) {
	xs, ok := v.([]any)
	if !ok && v != nil {
		return nil, fmt.Errorf("want %d integers, have %v", n, v)
	}
	if len(xs) != n {
		return nil, fmt.Errorf("want %d integers, have %v", n, v)
	}
	res := make([]int64, n)
	for i, x := range xs {
		s, err := number(x)
		if err != nil {
			return nil, err
		}
		iv, err := s.AsInt()
		if err != nil {
			return nil, err
		}
		res[i] = iv
	}
	return res, nil
}
