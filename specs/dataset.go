package specs

// DimensionSpec declares one named axis of a dataset and its length.
//
// Dimension order is meaningful: variables reference dimensions by name, and
// a variable's values are laid out row-major over its dimension tuple.
type DimensionSpec struct {
	// Dimension name, e.g. "ping_time", "range_bin", "frequency".
	//
	// Names are part of the converted-file contract: downstream readers of a
	// combined record look dimensions up by the exact names a single-file
	// conversion would have produced.
	Name string `json:"name"`

	// Number of elements along this dimension.
	Size int `json:"size"`
}

// VariableSpec represents one named array within a dataset.
//
// A variable carries its dimension tuple (names declared in the enclosing
// DatasetSpec), a flat row-major value slice, and variable-level attributes.
// Coordinate variables — most importantly the acquisition-time coordinate
// "ping_time" — are ordinary variables whose name matches a dimension.
type VariableSpec struct {
	// Variable name, e.g. "backscatter_r", "channel_id", "ping_time".
	Name string `json:"name"`

	// Ordered dimension names this variable spans.
	//
	// Every name must be declared in the enclosing dataset's Dimensions.
	// Empty means scalar.
	Dimensions []string `json:"dimensions"`

	// Flat row-major values.
	//
	// One of []float64, []int64, []string, []byte, or []map[string]any
	// (the last only for provenance attrs-snapshot variables). Time
	// coordinates are []int64 nanoseconds since the Unix epoch.
	Values any `json:"values"`

	// Variable-level attributes (units, long_name, ...).
	Attrs map[string]any `json:"attrs,omitempty"`
}

// DatasetSpec represents one group of a converted record: an ordered set of
// dimensions, named variables over those dimensions, and group-global
// attributes.
//
// This is the contract-level shape of the generic labeled-array container.
// Implementations backing it may hold values in memory or as deferred
// chunked computations; the combine engine only relies on the names, sizes
// and dimension tuples described here.
type DatasetSpec struct {
	// Ordered dimension declarations.
	Dimensions []DimensionSpec `json:"dimensions"`

	// Variables in declaration order.
	Variables []VariableSpec `json:"variables"`

	// Group-global attributes.
	//
	// These are the attributes the combine attrs-policy operates on when
	// groups from multiple records are merged.
	Attrs map[string]any `json:"attrs,omitempty"`
}
