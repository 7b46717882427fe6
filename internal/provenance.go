package internal

import (
	"fmt"
	"sort"
	"time"
)

// Conversion software identity recorded in every combined provenance group.
const (
	SoftwareName    = "sounder"
	SoftwareVersion = "0.5.1"
)

// SoftwareIdentity is the build identity the hosting application supplies
// for the provenance audit trail.
type SoftwareIdentity struct {
	Name    string
	Version string
}

func (s SoftwareIdentity) orDefault() SoftwareIdentity {
	if s.Name == "" {
		s.Name = SoftwareName
	}
	if s.Version == "" {
		s.Version = SoftwareVersion
	}
	return s
}

// AssembleCombinedProvenance builds a fresh provenance group from the input
// records' origin identifiers, in input order. The conversion time attr is
// the current UTC time at second precision — the only non-deterministic
// field of a combined record.
func AssembleCombinedProvenance(inputPaths []string, software SoftwareIdentity) *ArrayDataset {
	software = software.orDefault()
	paths := append([]string(nil), inputPaths...)
	return &ArrayDataset{
		dims:     []Dim{{Name: "file", Size: len(paths)}},
		varOrder: []string{"src_filenames"},
		vars: map[string]Variable{
			"src_filenames": {Dims: []string{"file"}, Values: paths, Attrs: Attrs{}},
		},
		attrs: Attrs{
			"conversion_software_name":    software.Name,
			"conversion_software_version": software.Version,
			"conversion_time":             time.Now().UTC().Format("2006-01-02T15:04:05") + "Z",
		},
	}
}

// AppendOldTime attaches the pre-repair time axis to the provenance group
// as a coordinate-style variable named after the original field, e.g.
// "old_ping_time". Reserved names are never overwritten.
func AppendOldTime(provenance *ArrayDataset, fieldName string, times []int64) error {
	if _, has := provenance.Var(fieldName); has {
		return fmt.Errorf("provenance variable %q already exists", fieldName)
	}
	values := append([]int64(nil), times...)
	provenance.setVar(fieldName, Variable{
		Dims:   []string{fieldName},
		Values: values,
		Attrs:  Attrs{},
	}, map[string]int{fieldName: len(values)})
	return nil
}

// AppendGroupAttrs attaches pre-merge attrs snapshots: one array-of-attrs
// variable per group that had more than one contributing input, named
// "<group>_attrs" over a "<group>_file" dimension. Reserved names are never
// overwritten.
func AppendGroupAttrs(provenance *ArrayDataset, oldAttrs map[string][]Attrs) error {
	groups := make([]string, 0, len(oldAttrs))
	for group := range oldAttrs {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		name := group + "_attrs"
		if _, has := provenance.Var(name); has {
			return fmt.Errorf("provenance variable %q already exists", name)
		}
		snapshots := make([]Attrs, len(oldAttrs[group]))
		for i, attrs := range oldAttrs[group] {
			snapshots[i] = copyAttrs(attrs)
		}
		dimName := group + "_file"
		provenance.setVar(name, Variable{
			Dims:   []string{dimName},
			Values: snapshots,
			Attrs:  Attrs{},
		}, map[string]int{dimName: len(snapshots)})
	}
	return nil
}
