package internal

import (
	"fmt"

	"sounder-spec/specs"
)

// SonarModel is the instrument model tag of a converted record. Valid
// models are the ones the concat policy table knows: AZFP, EK60, EK80,
// EA640.
type SonarModel struct {
	value string
}

func NewSonarModel(value string) (SonarModel, error) {
	if value == "" {
		return SonarModel{}, fmt.Errorf("sonar model is required")
	}
	if _, has := sonarModels[value]; !has {
		return SonarModel{}, fmt.Errorf("invalid sonar model: %q", value)
	}
	return SonarModel{value: value}, nil
}

func (m SonarModel) ToString() string {
	return m.value
}

// Echodata is the domain form of one converted record: a model tag
// (nil when the record never declared one), origin paths, and the group
// map. Group values are Dataset interfaces, so records backed by lazy or
// chunked storage combine the same way as in-memory ones.
type Echodata struct {
	SonarModel       *SonarModel
	SourceFile       string
	ConvertedRawPath string
	Groups           map[string]Dataset
}

// NewEchodata validates and converts a contract-level record. An empty
// model string yields a nil model tag (rejected later by Combine); an
// unknown model string is rejected here.
func NewEchodata(spec specs.EchodataSpec) (Echodata, error) {
	ed := Echodata{
		SourceFile:       spec.SourceFile,
		ConvertedRawPath: spec.ConvertedRawPath,
		Groups:           make(map[string]Dataset, len(spec.Groups)),
	}
	if spec.SonarModel != "" {
		model, err := NewSonarModel(spec.SonarModel)
		if err != nil {
			return Echodata{}, err
		}
		ed.SonarModel = &model
	}
	for _, group := range specs.GroupNames() {
		groupSpec := spec.Groups[group]
		if groupSpec == nil {
			continue
		}
		ds, err := NewArrayDataset(*groupSpec)
		if err != nil {
			return Echodata{}, fmt.Errorf("invalid group %q: %w", group, err)
		}
		ed.Groups[group] = ds
	}
	return ed, nil
}

// OriginPath is the record's identifier in the combined provenance group:
// the raw source file when known, otherwise the converted container path.
func (ed Echodata) OriginPath() string {
	if ed.SourceFile != "" {
		return ed.SourceFile
	}
	return ed.ConvertedRawPath
}

// ToSpec converts the record back to its contract-level shape. Absent
// groups stay absent.
func (ed Echodata) ToSpec() specs.EchodataSpec {
	spec := specs.EchodataSpec{
		SourceFile:       ed.SourceFile,
		ConvertedRawPath: ed.ConvertedRawPath,
		Groups:           make(map[string]*specs.DatasetSpec, len(ed.Groups)),
	}
	if ed.SonarModel != nil {
		spec.SonarModel = ed.SonarModel.ToString()
	}
	for _, group := range specs.GroupNames() {
		ds := ed.Groups[group]
		if ds == nil {
			continue
		}
		groupSpec := DatasetToSpec(ds)
		spec.Groups[group] = &groupSpec
	}
	return spec
}
