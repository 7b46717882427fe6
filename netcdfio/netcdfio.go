// Package netcdfio serializes converted records into hierarchical array
// containers and reads them back. Each group of a record becomes one NetCDF
// file under the record's container directory, with group, dimension and
// variable names preserved byte-for-byte, so combined output is
// indistinguishable in shape from a single-file conversion.
package netcdfio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"sounder-spec/specs"
)

// SaveConverted writes every present group of the record into
// <dir>/<group>.nc. The directory is created if needed; absent groups
// produce no file.
func SaveConverted(ed specs.EchodataSpec, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating container directory: %w", err)
	}
	for _, group := range specs.GroupNames() {
		ds := ed.Groups[group]
		if ds == nil {
			continue
		}
		path := filepath.Join(dir, group+".nc")
		if err := writeGroup(*ds, path); err != nil {
			return fmt.Errorf("writing group %q: %w", group, err)
		}
	}
	return nil
}

// OpenGroup reads one group back from a container directory written by
// SaveConverted.
func OpenGroup(dir, group string) (specs.DatasetSpec, error) {
	path := filepath.Join(dir, group+".nc")
	nc, err := netcdf.Open(path)
	if err != nil {
		return specs.DatasetSpec{}, fmt.Errorf("opening group %q: %w", group, err)
	}
	defer nc.Close()

	spec := specs.DatasetSpec{Attrs: attributeMapToAttrs(nc.Attributes())}
	sizes := map[string]int{}
	var dimOrder []string
	for _, name := range nc.ListVariables() {
		v, err := nc.GetVariable(name)
		if err != nil {
			return specs.DatasetSpec{}, fmt.Errorf("reading variable %q: %w", name, err)
		}
		flat, shape, err := flattenValues(v.Values)
		if err != nil {
			return specs.DatasetSpec{}, fmt.Errorf("reading variable %q: %w", name, err)
		}
		for i, dimName := range v.Dimensions {
			if i >= len(shape) {
				break
			}
			if _, seen := sizes[dimName]; !seen {
				sizes[dimName] = shape[i]
				dimOrder = append(dimOrder, dimName)
			}
		}
		spec.Variables = append(spec.Variables, specs.VariableSpec{
			Name:       name,
			Dimensions: v.Dimensions,
			Values:     flat,
			Attrs:      attributeMapToAttrs(v.Attributes),
		})
	}
	for _, name := range dimOrder {
		spec.Dimensions = append(spec.Dimensions, specs.DimensionSpec{Name: name, Size: sizes[name]})
	}
	return spec, nil
}

func writeGroup(ds specs.DatasetSpec, path string) (err error) {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := cw.Close()
		if err == nil {
			err = closeErr
		}
	}()

	globals, err := orderedAttrs(ds.Attrs)
	if err != nil {
		return err
	}
	if err = cw.AddAttributes(globals); err != nil {
		return err
	}

	sizes := make(map[string]int, len(ds.Dimensions))
	for _, dim := range ds.Dimensions {
		sizes[dim.Name] = dim.Size
	}
	for _, v := range ds.Variables {
		values, writeErr := writableValues(v.Values)
		if writeErr != nil {
			return fmt.Errorf("variable %q: %w", v.Name, writeErr)
		}
		shape := make([]int, len(v.Dimensions))
		for i, dimName := range v.Dimensions {
			shape[i] = sizes[dimName]
		}
		nested, nestErr := nestValues(values, shape)
		if nestErr != nil {
			return fmt.Errorf("variable %q: %w", v.Name, nestErr)
		}
		attrs, attrErr := orderedAttrs(v.Attrs)
		if attrErr != nil {
			return fmt.Errorf("variable %q: %w", v.Name, attrErr)
		}
		if err = cw.AddVar(v.Name, api.Variable{
			Values:     nested,
			Dimensions: v.Dimensions,
			Attributes: attrs,
		}); err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
	}
	return nil
}

// writableValues maps value kinds with no NetCDF representation onto ones
// that have: attrs-snapshot mappings become JSON strings.
func writableValues(values any) (any, error) {
	snapshots, ok := values.([]map[string]any)
	if !ok {
		return values, nil
	}
	encoded := make([]string, len(snapshots))
	for i, m := range snapshots {
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding attrs snapshot: %w", err)
		}
		encoded[i] = string(data)
	}
	return encoded, nil
}

func orderedAttrs(attrs map[string]any) (*util.OrderedMap, error) {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := make(map[string]any, len(attrs))
	for _, key := range keys {
		values[key] = attrs[key]
	}
	om, err := util.NewOrderedMap(keys, values)
	if err != nil {
		return nil, fmt.Errorf("building attribute map: %w", err)
	}
	return om, nil
}

func attributeMapToAttrs(am api.AttributeMap) map[string]any {
	if am == nil {
		return nil
	}
	attrs := make(map[string]any)
	for _, key := range am.Keys() {
		if value, has := am.Get(key); has {
			attrs[key] = value
		}
	}
	return attrs
}

// nestValues reshapes a flat row-major slice into the nested slices the
// NetCDF writer expects. Scalars (no dimensions) pass through as their
// single element.
func nestValues(flat any, shape []int) (any, error) {
	rv := reflect.ValueOf(flat)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("unsupported values type %T", flat)
	}
	if len(shape) == 0 {
		if rv.Len() != 1 {
			return nil, fmt.Errorf("scalar variable holds %d values", rv.Len())
		}
		return rv.Index(0).Interface(), nil
	}
	want := 1
	for _, n := range shape {
		want *= n
	}
	if rv.Len() != want {
		return nil, fmt.Errorf("value length %d does not match shape %v", rv.Len(), shape)
	}
	return nestSlice(rv, shape).Interface(), nil
}

func nestSlice(v reflect.Value, shape []int) reflect.Value {
	if len(shape) <= 1 {
		return v
	}
	n := shape[0]
	if n == 0 {
		elemType := nestedSliceType(v.Type(), len(shape)-1)
		return reflect.MakeSlice(reflect.SliceOf(elemType), 0, 0)
	}
	chunk := v.Len() / n
	parts := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		parts[i] = nestSlice(v.Slice(i*chunk, (i+1)*chunk), shape[1:])
	}
	out := reflect.MakeSlice(reflect.SliceOf(parts[0].Type()), n, n)
	for i, part := range parts {
		out.Index(i).Set(part)
	}
	return out
}

func nestedSliceType(flat reflect.Type, depth int) reflect.Type {
	t := flat
	for i := 1; i < depth; i++ {
		t = reflect.SliceOf(t)
	}
	return t
}

// flattenValues is the inverse of nestValues: nested slices come back flat
// row-major with their shape. Scalars wrap into a length-1 slice.
func flattenValues(values any) (any, []int, error) {
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice {
		wrapped := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
		wrapped.Index(0).Set(rv)
		return wrapped.Interface(), nil, nil
	}
	if rv.Type().Elem().Kind() != reflect.Slice {
		return values, []int{rv.Len()}, nil
	}
	n := rv.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot flatten empty nested values")
	}
	var flat reflect.Value
	var innerShape []int
	for i := 0; i < n; i++ {
		part, shape, err := flattenValues(rv.Index(i).Interface())
		if err != nil {
			return nil, nil, err
		}
		if innerShape == nil {
			innerShape = shape
			flat = reflect.MakeSlice(reflect.TypeOf(part), 0, n*reflect.ValueOf(part).Len())
		} else if !equalShape(innerShape, shape) {
			return nil, nil, fmt.Errorf("ragged nested values")
		}
		flat = reflect.AppendSlice(flat, reflect.ValueOf(part))
	}
	return flat.Interface(), append([]int{n}, innerShape...), nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
