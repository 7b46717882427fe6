package internal

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed concat_policy.yaml
var concatPolicyYAML []byte

type modelConcatPolicy struct {
	ConcatDims     map[string]string `yaml:"concat_dims"`
	ConcatDataVars map[string]string `yaml:"concat_data_vars"`
}

// sonarModels holds the static (model, group) → (concat dim, variable mode)
// policy. Loaded once from the compiled-in table; a malformed table is a
// programmer error, so loading panics instead of returning an error.
var sonarModels = loadConcatPolicy()

func loadConcatPolicy() map[string]modelConcatPolicy {
	var models map[string]modelConcatPolicy
	if err := yaml.Unmarshal(concatPolicyYAML, &models); err != nil {
		panic(fmt.Sprintf("malformed concat policy table: %v", err))
	}
	for model, policy := range models {
		if _, has := policy.ConcatDims["default"]; !has {
			panic(fmt.Sprintf("concat policy for model %q has no default concat dimension", model))
		}
		if _, has := policy.ConcatDataVars["default"]; !has {
			panic(fmt.Sprintf("concat policy for model %q has no default variable mode", model))
		}
		for group, mode := range policy.ConcatDataVars {
			if _, err := NewVarMode(mode); err != nil {
				panic(fmt.Sprintf("concat policy for model %q group %q: %v", model, group, err))
			}
		}
	}
	return models
}

// lookupConcat returns the concat dimension and variable-inclusion mode for
// one (model, group) pair, falling back to the model's default entry.
func lookupConcat(model, group string) (string, VarMode, error) {
	policy, has := sonarModels[model]
	if !has {
		return "", 0, fmt.Errorf("no concat policy for sonar model %q", model)
	}
	dim, has := policy.ConcatDims[group]
	if !has {
		dim = policy.ConcatDims["default"]
	}
	modeName, has := policy.ConcatDataVars[group]
	if !has {
		modeName = policy.ConcatDataVars["default"]
	}
	mode, err := NewVarMode(modeName)
	if err != nil {
		return "", 0, err
	}
	return dim, mode, nil
}
