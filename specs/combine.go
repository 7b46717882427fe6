package specs

// Combine merges an ordered list of converted records into one logical
// record spanning the whole deployment.
//
// Process:
//  1. Validate that every record carries the same non-empty sonar model
//  2. For each group in the fixed group map, in order:
//     - "top" and "sonar": copied from the first record (no cross-record
//       equality check is performed)
//     - "provenance": rebuilt from each record's origin identifier
//     - all others: datasets present in the inputs are concatenated along
//       the model- and group-specific dimension, global attrs merged under
//       the configured attrs policy
//  3. Repair the acquisition-time coordinate if a reversal is detected;
//     the first detection warns once, later groups reuse the corrected axis
//  4. Record pre-merge attrs snapshots and the uncorrected time axis in the
//     provenance group
//
// An empty input list yields a record with every group absent and no error.
//
// This is the spec-level interface using only primitive types.
// See internal.CombineSpecs for the reference implementation.
type Combine func(echodatas []EchodataSpec, config CombineConfigSpec) (EchodataSpec, error)

// CombineConfigSpec configures one combine call.
//
// The attrs policy is the only behavioral knob; the software identity
// fields feed the provenance group's audit attributes.
type CombineConfigSpec struct {
	// Conflict-resolution strategy for group-global attributes.
	//
	// Determines what happens when the same group arrives from several
	// records with differing attrs:
	//   - "override": copy attrs from the first record, ignore the rest
	//   - "drop": empty attrs on the combined group
	//   - "identical": all records' attrs must be equal, else the call fails
	//   - "no_conflicts": union of keys; a key bound to two distinct values
	//     fails the call
	//   - "overwrite_conflicts": union of keys; later records win collisions
	//
	// Empty selects "override". Any other value is rejected.
	CombineAttrs string `json:"combineAttrs"`

	// Conversion software name recorded in the provenance group.
	//
	// Supplied by the hosting application; empty selects this library's
	// own identity.
	SoftwareName string `json:"softwareName,omitempty"`

	// Conversion software version recorded in the provenance group.
	//
	// Empty selects this library's running version string.
	SoftwareVersion string `json:"softwareVersion,omitempty"`
}
