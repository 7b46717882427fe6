package internal

import (
	"testing"
)

func TestFlow(t *testing.T) {

	// Echodata list (one per converted raw file)
	// Validate homogeneity (all records same non-nil SonarModel)
	// For each group in the fixed group map:
	//   - top/sonar: carry over from first record
	//   - provenance: rebuild from origin paths (src_filenames + software identity)
	//   - others: gather present datasets, lookup (model, group) concat policy
	//     - Concatenate along concat dim under variable mode (minimal/all/different)
	//     - Merge global attrs (override/drop/identical/no_conflicts/overwrite_conflicts)
	//     - Snapshot pre-merge attrs when >1 input contributed
	//     - beam: coerce known metadata strings to fixed widths
	//     - ping_time: detect reversal once, repair, reuse the corrected axis
	// Attach old_ping_time + per-group attrs snapshots to provenance
}
