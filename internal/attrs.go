package internal

import (
	"fmt"
	"reflect"
)

// Attrs is one group's global attribute mapping.
type Attrs map[string]any

// CombineAttrs selects the conflict-resolution strategy applied to group
// attributes when datasets from several records merge into one.
type CombineAttrs int

const (
	CombineAttrsOverride CombineAttrs = iota
	CombineAttrsDrop
	CombineAttrsIdentical
	CombineAttrsNoConflicts
	CombineAttrsOverwriteConflicts
)

// String returns the caller-facing selector string for the policy.
func (c CombineAttrs) String() string {
	switch c {
	case CombineAttrsOverride:
		return "override"
	case CombineAttrsDrop:
		return "drop"
	case CombineAttrsIdentical:
		return "identical"
	case CombineAttrsNoConflicts:
		return "no_conflicts"
	case CombineAttrsOverwriteConflicts:
		return "overwrite_conflicts"
	default:
		return "unknown"
	}
}

// NewCombineAttrs validates the caller-facing selector. Empty selects
// "override", matching what a single-file conversion would have done.
func NewCombineAttrs(value string) (CombineAttrs, error) {
	switch value {
	case "", "override":
		return CombineAttrsOverride, nil
	case "drop":
		return CombineAttrsDrop, nil
	case "identical":
		return CombineAttrsIdentical, nil
	case "no_conflicts":
		return CombineAttrsNoConflicts, nil
	case "overwrite_conflicts":
		return CombineAttrsOverwriteConflicts, nil
	default:
		return 0, fmt.Errorf("invalid combine attrs policy: %q", value)
	}
}

// MergeAttrs merges an ordered list of attribute mappings under the policy.
// The inputs are never mutated; the result is always freshly allocated.
func MergeAttrs(policy CombineAttrs, attrsList []Attrs) (Attrs, error) {
	switch policy {
	case CombineAttrsOverride:
		if len(attrsList) == 0 {
			return Attrs{}, nil
		}
		return copyAttrs(attrsList[0]), nil

	case CombineAttrsDrop:
		return Attrs{}, nil

	case CombineAttrsIdentical:
		if len(attrsList) == 0 {
			return Attrs{}, nil
		}
		first := attrsList[0]
		for _, attrs := range attrsList[1:] {
			if len(attrs) != len(first) {
				return nil, &AttributeConflictError{
					Policy:  policy.String(),
					Message: fmt.Sprintf("attrs have %d keys where the first mapping has %d", len(attrs), len(first)),
				}
			}
			for key, value := range attrs {
				firstValue, has := first[key]
				if !has || !attrValuesEqual(firstValue, value) {
					return nil, &AttributeConflictError{
						Policy:  policy.String(),
						Key:     key,
						Message: "attrs must be identical across all inputs",
					}
				}
			}
		}
		return copyAttrs(first), nil

	case CombineAttrsNoConflicts:
		merged := Attrs{}
		for _, attrs := range attrsList {
			for key, value := range attrs {
				existing, has := merged[key]
				if has && !attrValuesEqual(existing, value) {
					return nil, &AttributeConflictError{
						Policy:  policy.String(),
						Key:     key,
						Message: fmt.Sprintf("conflicting values %v and %v", existing, value),
					}
				}
				merged[key] = value
			}
		}
		return merged, nil

	case CombineAttrsOverwriteConflicts:
		return UnionAttrs(attrsList), nil

	default:
		return nil, fmt.Errorf("invalid combine attrs policy: %d", policy)
	}
}

// UnionAttrs merges attrs from a list of mappings, prioritizing keys from
// later mappings. Never fails.
func UnionAttrs(attrsList []Attrs) Attrs {
	merged := Attrs{}
	for _, attrs := range attrsList {
		for key, value := range attrs {
			merged[key] = value
		}
	}
	return merged
}

func copyAttrs(attrs Attrs) Attrs {
	copied := make(Attrs, len(attrs))
	for key, value := range attrs {
		copied[key] = value
	}
	return copied
}

// attrValuesEqual compares two attribute values. Numeric scalars compare by
// decimal value, so 1, int64(1) and 1.0 are the same attribute; everything
// else falls back to deep equality.
func attrValuesEqual(a, b any) bool {
	da, aOK := attrDecimal(a)
	db, bOK := attrDecimal(b)
	if aOK && bOK {
		return da.Cmp(db) == 0
	}
	return reflect.DeepEqual(a, b)
}

func attrDecimal(value any) (Decimal, bool) {
	switch v := value.(type) {
	case int:
		return NewDecimalFromInt64(int64(v)), true
	case int32:
		return NewDecimalFromInt64(int64(v)), true
	case int64:
		return NewDecimalFromInt64(v), true
	case float32:
		d, err := NewDecimalFromFloat64(float64(v))
		return d, err == nil
	case float64:
		d, err := NewDecimalFromFloat64(v)
		return d, err == nil
	default:
		return Decimal{}, false
	}
}
