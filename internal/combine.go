package internal

import (
	"fmt"
	"log/slog"

	"sounder-spec/internal/infra"
	"sounder-spec/specs"
)

// CombineStartedEvent is published once per combine call, before any group
// is processed.
type CombineStartedEvent struct {
	InputCount int
}

func (e CombineStartedEvent) EventType() infra.EventType { return infra.CombineStarted }

// GroupCombinedEvent is published after each group is stored into the
// combined record.
type GroupCombinedEvent struct {
	Group string
}

func (e GroupCombinedEvent) EventType() infra.EventType { return infra.GroupCombined }

// TimeReversalEvent is published exactly once per combine call, the first
// time a ping_time reversal is detected in any group. Later reversals reuse
// the corrected axis silently.
type TimeReversalEvent struct {
	Group string
}

func (e TimeReversalEvent) EventType() infra.EventType { return infra.TimeReversalDetected }

// CombineCompletedEvent is published after the provenance group is
// finalized.
type CombineCompletedEvent struct{}

func (e CombineCompletedEvent) EventType() infra.EventType { return infra.CombineCompleted }

// CombineConfig is the domain form of one combine call's configuration.
// A nil Bus gets the default bus, whose only subscriber logs the one-time
// reversal warning.
type CombineConfig struct {
	CombineAttrs CombineAttrs
	Software     SoftwareIdentity
	Bus          *infra.Bus
}

func NewCombineConfig(spec specs.CombineConfigSpec) (CombineConfig, error) {
	policy, err := NewCombineAttrs(spec.CombineAttrs)
	if err != nil {
		return CombineConfig{}, fmt.Errorf("invalid combine config: %w", err)
	}
	return CombineConfig{
		CombineAttrs: policy,
		Software: SoftwareIdentity{
			Name:    spec.SoftwareName,
			Version: spec.SoftwareVersion,
		},
	}, nil
}

func defaultBus() *infra.Bus {
	bus := infra.NewBus()
	bus.Subscribe(infra.TimeReversalDetected, logReversalWarning)
	return bus
}

func logReversalWarning(e infra.Event) {
	if ev, ok := e.(TimeReversalEvent); ok {
		slog.Warn("ping_time reversal detected; the ping times will be corrected", "group", ev.Group)
	}
}

// combineState is the call-scoped accumulator threaded through the group
// loop: the pre- and post-repair ping_time axes from the first reversal,
// and the pre-merge attrs snapshots destined for the provenance group.
type combineState struct {
	oldPingTime []int64
	newPingTime []int64
	oldAttrs    map[string][]Attrs
}

// Combine merges the records into one deployment-spanning record. Inputs
// are read-only; the result owns its storage except for the "top" and
// "sonar" groups, which are carried over from the first record as-is.
//
// The model check runs before any group work and fails the whole call;
// attrs-policy violations abort the call mid-loop with no output. An empty
// input list yields a record with every group absent.
func Combine(echodatas []Echodata, cfg CombineConfig) (Echodata, error) {
	result := Echodata{Groups: map[string]Dataset{}}
	if len(echodatas) == 0 {
		return result, nil
	}

	var model *SonarModel
	for i, ed := range echodatas {
		if ed.SonarModel == nil {
			return Echodata{}, &ValidationError{
				Message: fmt.Sprintf("echodata at position %d has no sonar model; all inputs must have non-nil sonar model values", i),
			}
		}
		if model == nil {
			model = ed.SonarModel
			continue
		}
		if ed.SonarModel.ToString() != model.ToString() {
			return Echodata{}, &ValidationError{
				Message: fmt.Sprintf("echodata at position %d has sonar model %s where earlier inputs have %s; all inputs must share one sonar model", i, ed.SonarModel.ToString(), model.ToString()),
			}
		}
	}
	resultModel := *model
	result.SonarModel = &resultModel

	bus := cfg.Bus
	if bus == nil {
		bus = defaultBus()
	}
	bus.Publish(CombineStartedEvent{InputCount: len(echodatas)})

	state := &combineState{oldAttrs: map[string][]Attrs{}}

	for _, group := range specs.GroupNames() {
		var combined Dataset
		switch group {
		case specs.GroupTop, specs.GroupSonar:
			// Carried over from the first record without a cross-record
			// equality check. Inherited behavior; see the design notes.
			combined = echodatas[0].Groups[group]
		case specs.GroupProvenance:
			paths := make([]string, len(echodatas))
			for i, ed := range echodatas {
				paths[i] = ed.OriginPath()
			}
			combined = AssembleCombinedProvenance(paths, cfg.Software)
		default:
			built, err := combineGroup(group, echodatas, resultModel, cfg.CombineAttrs, state, bus)
			if err != nil {
				return Echodata{}, fmt.Errorf("combining group %q: %w", group, err)
			}
			if built != nil {
				combined = built
			}
		}
		if combined == nil {
			continue
		}
		result.Groups[group] = combined
		bus.Publish(GroupCombinedEvent{Group: group})
	}

	if provenance, ok := result.Groups[specs.GroupProvenance].(*ArrayDataset); ok {
		if state.oldPingTime != nil {
			if err := AppendOldTime(provenance, "old_ping_time", state.oldPingTime); err != nil {
				return Echodata{}, fmt.Errorf("finalizing provenance: %w", err)
			}
		}
		if len(state.oldAttrs) > 0 {
			if err := AppendGroupAttrs(provenance, state.oldAttrs); err != nil {
				return Echodata{}, fmt.Errorf("finalizing provenance: %w", err)
			}
		}
	}

	bus.Publish(CombineCompletedEvent{})
	return result, nil
}

func combineGroup(group string, echodatas []Echodata, model SonarModel, attrsPolicy CombineAttrs, state *combineState, bus *infra.Bus) (*ArrayDataset, error) {
	var parts []Dataset
	for _, ed := range echodatas {
		if ds := ed.Groups[group]; ds != nil {
			parts = append(parts, ds)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	concatDim, mode, err := lookupConcat(model.ToString(), group)
	if err != nil {
		return nil, err
	}

	// overwrite_conflicts cannot fail, so concatenation runs with attrs
	// dropped and the union is applied as a separate pass.
	concatAttrs := attrsPolicy
	if attrsPolicy == CombineAttrsOverwriteConflicts {
		concatAttrs = CombineAttrsDrop
	}
	combined, err := ConcatDatasets(parts, concatDim, mode, concatAttrs)
	if err != nil {
		return nil, err
	}
	if attrsPolicy == CombineAttrsOverwriteConflicts {
		attrsList := make([]Attrs, len(parts))
		for i, ds := range parts {
			attrsList[i] = ds.Attrs()
		}
		combined.setAttrs(UnionAttrs(attrsList))
	}

	if len(parts) > 1 {
		snapshots := make([]Attrs, len(parts))
		for i, ds := range parts {
			snapshots[i] = copyAttrs(ds.Attrs())
		}
		state.oldAttrs[group] = snapshots
	}

	if group == specs.GroupBeam {
		normalizeBeamWidths(model.ToString(), combined)
	}

	if v, has := combined.Var("ping_time"); has {
		if times, ok := v.Values.([]int64); ok {
			switch {
			case state.newPingTime != nil:
				// A correction already exists for this call: every later
				// group gets the same corrected axis, no re-detection.
				combined.setVar("ping_time", Variable{Dims: v.Dims, Values: state.newPingTime, Attrs: v.Attrs}, nil)
			case ExistReversedTime(times):
				state.oldPingTime = times
				state.newPingTime = CoerceIncreasingTime(times)
				combined.setVar("ping_time", Variable{Dims: v.Dims, Values: state.newPingTime, Attrs: v.Attrs}, nil)
				bus.Publish(TimeReversalEvent{Group: group})
			}
		}
	}

	// Multi-dimensional concatenation bookkeeping must never leak into the
	// output schema.
	combined.dropDim("concat_dim")
	return combined, nil
}

// Fixed maximum widths for known beam-group metadata strings. Files from
// one deployment can disagree in string width; coercing to the fixed width
// keeps concatenated output stable for downstream readers.
var beamStringWidths = map[string]map[string]int{
	"EK80":  {"transceiver_software_version": 10, "channel_id": 50},
	"EA640": {"transceiver_software_version": 10, "channel_id": 50},
	"EK60":  {"gpt_software_version": 10, "channel_id": 50},
}

func normalizeBeamWidths(model string, ds *ArrayDataset) {
	for name, width := range beamStringWidths[model] {
		v, has := ds.Var(name)
		if !has {
			continue
		}
		values, ok := v.Values.([]string)
		if !ok {
			continue
		}
		coerced := make([]string, len(values))
		for i, s := range values {
			runes := []rune(s)
			if len(runes) > width {
				runes = runes[:width]
			}
			coerced[i] = string(runes)
		}
		ds.setVar(name, Variable{Dims: v.Dims, Values: coerced, Attrs: v.Attrs}, nil)
	}
}

// CombineSpecs implements specs.Combine.
// Converts specs to domain objects, combines, and converts back to specs.
func CombineSpecs(echodataSpecs []specs.EchodataSpec, configSpec specs.CombineConfigSpec) (specs.EchodataSpec, error) {
	echodatas := make([]Echodata, len(echodataSpecs))
	for i, spec := range echodataSpecs {
		ed, err := NewEchodata(spec)
		if err != nil {
			return specs.EchodataSpec{}, fmt.Errorf("invalid echodata at position %d: %w", i, err)
		}
		echodatas[i] = ed
	}

	config, err := NewCombineConfig(configSpec)
	if err != nil {
		return specs.EchodataSpec{}, err
	}

	combined, err := Combine(echodatas, config)
	if err != nil {
		return specs.EchodataSpec{}, err
	}
	return combined.ToSpec(), nil
}

var _ specs.Combine = CombineSpecs
