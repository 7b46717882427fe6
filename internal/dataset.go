package internal

import (
	"fmt"
	"reflect"

	"sounder-spec/specs"
)

// Dim is one named axis of a dataset.
type Dim struct {
	Name string
	Size int
}

// Variable is one named array: an ordered dimension tuple, a flat row-major
// value slice, and variable-level attrs. Supported value kinds are
// []float64, []int64, []string, []byte and []Attrs.
type Variable struct {
	Dims   []string
	Values any
	Attrs  Attrs
}

// Dataset is the generic labeled-array container the combine engine works
// over: named dimensions with sizes, named variables with dimension tuples
// and attrs, and global attrs. Any backend satisfying this interface —
// in-memory slices, chunked or deferred arrays — is acceptable;
// ConcatDatasets and the combiner never reach past it into a concrete
// representation of their inputs.
type Dataset interface {
	// Dims returns the ordered dimension declarations.
	Dims() []Dim
	// DimSize returns the size of a named dimension.
	DimSize(name string) (int, bool)
	// VarNames returns variable names in declaration order.
	VarNames() []string
	// Var returns a named variable.
	Var(name string) (Variable, bool)
	// Attrs returns the dataset-global attribute mapping.
	Attrs() Attrs
}

var _ Dataset = (*ArrayDataset)(nil)

// ArrayDataset is the in-memory Dataset backend. Combined groups are always
// freshly built ArrayDatasets owning their own storage.
type ArrayDataset struct {
	dims     []Dim
	varOrder []string
	vars     map[string]Variable
	attrs    Attrs
}

// NewArrayDataset validates and converts a contract-level dataset.
// Every variable dimension must be declared, and flat value lengths must
// match the product of the declared sizes.
func NewArrayDataset(spec specs.DatasetSpec) (*ArrayDataset, error) {
	ds := &ArrayDataset{
		vars:  make(map[string]Variable, len(spec.Variables)),
		attrs: Attrs{},
	}
	sizes := make(map[string]int, len(spec.Dimensions))
	for _, dim := range spec.Dimensions {
		if dim.Name == "" {
			return nil, fmt.Errorf("dimension name is required")
		}
		if dim.Size < 0 {
			return nil, fmt.Errorf("dimension %q has negative size %d", dim.Name, dim.Size)
		}
		if _, has := sizes[dim.Name]; has {
			return nil, fmt.Errorf("dimension %q declared twice", dim.Name)
		}
		sizes[dim.Name] = dim.Size
		ds.dims = append(ds.dims, Dim{Name: dim.Name, Size: dim.Size})
	}
	for _, v := range spec.Variables {
		if v.Name == "" {
			return nil, fmt.Errorf("variable name is required")
		}
		if _, has := ds.vars[v.Name]; has {
			return nil, fmt.Errorf("variable %q declared twice", v.Name)
		}
		want := 1
		for _, dimName := range v.Dimensions {
			size, declared := sizes[dimName]
			if !declared {
				return nil, fmt.Errorf("variable %q uses undeclared dimension %q", v.Name, dimName)
			}
			want *= size
		}
		got, err := valuesLen(v.Values)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", v.Name, err)
		}
		if got != want {
			return nil, fmt.Errorf("variable %q holds %d values where its dimensions declare %d", v.Name, got, want)
		}
		values := v.Values
		if maps, ok := values.([]map[string]any); ok {
			snapshots := make([]Attrs, len(maps))
			for i, m := range maps {
				snapshots[i] = Attrs(m)
			}
			values = snapshots
		}
		ds.varOrder = append(ds.varOrder, v.Name)
		ds.vars[v.Name] = Variable{
			Dims:   append([]string(nil), v.Dimensions...),
			Values: values,
			Attrs:  copyAttrs(v.Attrs),
		}
	}
	for key, value := range spec.Attrs {
		ds.attrs[key] = value
	}
	return ds, nil
}

func (ds *ArrayDataset) Dims() []Dim {
	dims := make([]Dim, len(ds.dims))
	copy(dims, ds.dims)
	return dims
}

func (ds *ArrayDataset) DimSize(name string) (int, bool) {
	for _, dim := range ds.dims {
		if dim.Name == name {
			return dim.Size, true
		}
	}
	return 0, false
}

func (ds *ArrayDataset) VarNames() []string {
	names := make([]string, len(ds.varOrder))
	copy(names, ds.varOrder)
	return names
}

func (ds *ArrayDataset) Var(name string) (Variable, bool) {
	v, has := ds.vars[name]
	return v, has
}

func (ds *ArrayDataset) Attrs() Attrs {
	return ds.attrs
}

// setVar adds or replaces a variable, declaring any missing dimensions from
// the given sizes. Order of existing variables is preserved.
func (ds *ArrayDataset) setVar(name string, v Variable, sizes map[string]int) {
	for _, dimName := range v.Dims {
		if _, has := ds.DimSize(dimName); !has {
			ds.dims = append(ds.dims, Dim{Name: dimName, Size: sizes[dimName]})
		}
	}
	if _, has := ds.vars[name]; !has {
		ds.varOrder = append(ds.varOrder, name)
	}
	ds.vars[name] = v
}

func (ds *ArrayDataset) setAttrs(attrs Attrs) {
	ds.attrs = attrs
}

// dropDim removes a dimension and every variable spanning it. Dimensions
// not present are ignored.
func (ds *ArrayDataset) dropDim(name string) {
	found := false
	for i, dim := range ds.dims {
		if dim.Name == name {
			ds.dims = append(ds.dims[:i], ds.dims[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	var kept []string
	for _, varName := range ds.varOrder {
		uses := false
		for _, dimName := range ds.vars[varName].Dims {
			if dimName == name {
				uses = true
				break
			}
		}
		if uses {
			delete(ds.vars, varName)
			continue
		}
		kept = append(kept, varName)
	}
	ds.varOrder = kept
}

// DatasetToSpec converts any Dataset back to its contract-level shape.
func DatasetToSpec(ds Dataset) specs.DatasetSpec {
	spec := specs.DatasetSpec{Attrs: copyAttrs(ds.Attrs())}
	for _, dim := range ds.Dims() {
		spec.Dimensions = append(spec.Dimensions, specs.DimensionSpec{Name: dim.Name, Size: dim.Size})
	}
	for _, name := range ds.VarNames() {
		v, _ := ds.Var(name)
		values := v.Values
		if snapshots, ok := values.([]Attrs); ok {
			maps := make([]map[string]any, len(snapshots))
			for i, attrs := range snapshots {
				maps[i] = attrs
			}
			values = maps
		}
		spec.Variables = append(spec.Variables, specs.VariableSpec{
			Name:       name,
			Dimensions: append([]string(nil), v.Dims...),
			Values:     values,
			Attrs:      copyAttrs(v.Attrs),
		})
	}
	return spec
}

// VarMode selects which variables of a group are concatenated along the
// concat dimension and which are carried over from the first input.
type VarMode int

const (
	// VarModeMinimal concatenates only variables spanning the concat
	// dimension; all others are taken from the first input that has them.
	VarModeMinimal VarMode = iota
	// VarModeAll concatenates every variable; variables without the concat
	// dimension gain it as a new leading axis, one block per input.
	VarModeAll
	// VarModeDifferent concatenates variables spanning the concat dimension
	// and variables whose values differ across inputs; variables equal
	// everywhere are taken once.
	VarModeDifferent
)

func (m VarMode) String() string {
	switch m {
	case VarModeMinimal:
		return "minimal"
	case VarModeAll:
		return "all"
	case VarModeDifferent:
		return "different"
	default:
		return "unknown"
	}
}

// NewVarMode validates a variable-inclusion mode string.
func NewVarMode(value string) (VarMode, error) {
	switch value {
	case "minimal":
		return VarModeMinimal, nil
	case "all":
		return VarModeAll, nil
	case "different":
		return VarModeDifferent, nil
	default:
		return 0, fmt.Errorf("invalid variable mode: %q", value)
	}
}

// ConcatDatasets joins datasets along one named dimension under a
// variable-inclusion mode, merging global attrs under the attrs policy.
// Inputs are read-only; the result owns all its storage.
//
// Non-concat dimensions must agree in size wherever declared. A dataset
// that does not declare the concat dimension contributes a single block
// along it.
func ConcatDatasets(datasets []Dataset, concatDim string, mode VarMode, attrsPolicy CombineAttrs) (*ArrayDataset, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("no datasets to concatenate")
	}

	// Per-input extent along the concat dimension.
	blocks := make([]int, len(datasets))
	totalConcat := 0
	for i, ds := range datasets {
		if size, has := ds.DimSize(concatDim); has {
			blocks[i] = size
		} else {
			blocks[i] = 1
		}
		totalConcat += blocks[i]
	}

	// Union of dimensions in first-seen order; non-concat sizes must agree.
	var dimOrder []string
	sizes := map[string]int{}
	declared := map[string]bool{}
	for i, ds := range datasets {
		for _, dim := range ds.Dims() {
			if dim.Name == concatDim {
				if !declared[dim.Name] {
					declared[dim.Name] = true
					dimOrder = append(dimOrder, dim.Name)
				}
				continue
			}
			if !declared[dim.Name] {
				declared[dim.Name] = true
				sizes[dim.Name] = dim.Size
				dimOrder = append(dimOrder, dim.Name)
				continue
			}
			if sizes[dim.Name] != dim.Size {
				return nil, fmt.Errorf("dimension %q has size %d in input %d where earlier inputs have %d", dim.Name, dim.Size, i, sizes[dim.Name])
			}
		}
	}
	sizes[concatDim] = totalConcat

	result := &ArrayDataset{vars: map[string]Variable{}, attrs: Attrs{}}
	for _, name := range dimOrder {
		result.dims = append(result.dims, Dim{Name: name, Size: sizes[name]})
	}

	for _, name := range unionVarNames(datasets) {
		variable, err := combineVariable(name, datasets, blocks, concatDim, mode, sizes)
		if err != nil {
			return nil, err
		}
		result.setVar(name, variable, sizes)
	}

	attrsList := make([]Attrs, len(datasets))
	for i, ds := range datasets {
		attrsList[i] = ds.Attrs()
	}
	merged, err := MergeAttrs(attrsPolicy, attrsList)
	if err != nil {
		return nil, err
	}
	result.setAttrs(merged)
	return result, nil
}

func unionVarNames(datasets []Dataset) []string {
	var order []string
	seen := map[string]bool{}
	for _, ds := range datasets {
		for _, name := range ds.VarNames() {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	return order
}

func combineVariable(name string, datasets []Dataset, blocks []int, concatDim string, mode VarMode, sizes map[string]int) (Variable, error) {
	var present []Variable
	presentBlocks := 0
	for i, ds := range datasets {
		v, has := ds.Var(name)
		if !has {
			continue
		}
		if len(present) > 0 && !reflect.DeepEqual(present[0].Dims, v.Dims) {
			return Variable{}, fmt.Errorf("variable %q spans %v in input %d where earlier inputs span %v", name, v.Dims, i, present[0].Dims)
		}
		present = append(present, v)
		presentBlocks += blocks[i]
	}
	first := present[0]

	axis := -1
	for i, dimName := range first.Dims {
		if dimName == concatDim {
			axis = i
		}
	}

	if axis < 0 {
		switch mode {
		case VarModeMinimal:
			return carryVariable(first), nil
		case VarModeDifferent:
			differ := false
			for _, v := range present[1:] {
				if !reflect.DeepEqual(first.Values, v.Values) {
					differ = true
					break
				}
			}
			if !differ {
				return carryVariable(first), nil
			}
		case VarModeAll:
			// stacked below
		}
		if presentBlocks != sizes[concatDim] {
			return Variable{}, fmt.Errorf("variable %q stacks to %d along %q where the group spans %d", name, presentBlocks, concatDim, sizes[concatDim])
		}
		stacked, err := stackVariableValues(present, blocks)
		if err != nil {
			return Variable{}, fmt.Errorf("variable %q: %w", name, err)
		}
		return Variable{
			Dims:   append([]string{concatDim}, first.Dims...),
			Values: stacked,
			Attrs:  copyAttrs(first.Attrs),
		}, nil
	}

	if presentBlocks != sizes[concatDim] {
		return Variable{}, fmt.Errorf("variable %q is absent from inputs spanning %d of %d along %q", name, sizes[concatDim]-presentBlocks, sizes[concatDim], concatDim)
	}
	outer := 1
	for _, dimName := range first.Dims[:axis] {
		outer *= sizes[dimName]
	}
	parts := make([]any, len(present))
	for i, v := range present {
		parts[i] = v.Values
	}
	joined, err := concatValues(parts, outer)
	if err != nil {
		return Variable{}, fmt.Errorf("variable %q: %w", name, err)
	}
	return Variable{
		Dims:   append([]string(nil), first.Dims...),
		Values: joined,
		Attrs:  copyAttrs(first.Attrs),
	}, nil
}

func carryVariable(v Variable) Variable {
	return Variable{
		Dims:   append([]string(nil), v.Dims...),
		Values: v.Values,
		Attrs:  copyAttrs(v.Attrs),
	}
}

// stackVariableValues prepends the concat dimension: input i contributes
// blocks[i] copies of its values.
func stackVariableValues(present []Variable, blocks []int) (any, error) {
	var parts []any
	for i, v := range present {
		for n := 0; n < blocks[i]; n++ {
			parts = append(parts, v.Values)
		}
	}
	return concatValues(parts, 1)
}

// valuesLen returns the flat length of a value slice.
func valuesLen(values any) (int, error) {
	switch v := values.(type) {
	case []float64:
		return len(v), nil
	case []int64:
		return len(v), nil
	case []string:
		return len(v), nil
	case []byte:
		return len(v), nil
	case []Attrs:
		return len(v), nil
	case []map[string]any:
		return len(v), nil
	case nil:
		return 0, fmt.Errorf("values are required")
	default:
		return 0, fmt.Errorf("unsupported values type %T", values)
	}
}

// concatValues joins flat row-major slices along an axis with the given
// outer extent (product of the dimensions before the axis; 1 for a leading
// axis). All parts must share one value kind.
func concatValues(parts []any, outer int) (any, error) {
	switch parts[0].(type) {
	case []float64:
		return concatAxis[float64](parts, outer)
	case []int64:
		return concatAxis[int64](parts, outer)
	case []string:
		return concatAxis[string](parts, outer)
	case []byte:
		return concatAxis[byte](parts, outer)
	case []Attrs:
		return concatAxis[Attrs](parts, outer)
	default:
		return nil, fmt.Errorf("unsupported values type %T", parts[0])
	}
}

func concatAxis[T any](parts []any, outer int) (any, error) {
	typed := make([][]T, len(parts))
	total := 0
	for i, part := range parts {
		slice, ok := part.([]T)
		if !ok {
			return nil, fmt.Errorf("mixed value types %T and %T", parts[0], part)
		}
		if outer > 0 && len(slice)%outer != 0 {
			return nil, fmt.Errorf("value length %d does not divide into %d outer blocks", len(slice), outer)
		}
		typed[i] = slice
		total += len(slice)
	}
	out := make([]T, 0, total)
	for o := 0; o < outer; o++ {
		for _, slice := range typed {
			chunk := len(slice) / outer
			out = append(out, slice[o*chunk:(o+1)*chunk]...)
		}
	}
	return out, nil
}
