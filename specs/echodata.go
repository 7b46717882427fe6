package specs

// Canonical group names, in the fixed order groups are processed and stored.
// The names mirror the hierarchical container layout a single-file
// conversion produces, so combined output needs no special-casing by
// downstream readers.
const (
	GroupTop         = "top"
	GroupEnvironment = "environment"
	GroupPlatform    = "platform"
	GroupNMEA        = "nmea"
	GroupProvenance  = "provenance"
	GroupSonar       = "sonar"
	GroupBeam        = "beam"
	GroupBeamPower   = "beam_power"
	GroupVendor      = "vendor"
)

var groupMap = []string{
	GroupTop,
	GroupEnvironment,
	GroupPlatform,
	GroupNMEA,
	GroupProvenance,
	GroupSonar,
	GroupBeam,
	GroupBeamPower,
	GroupVendor,
}

// GroupNames returns the fixed, ordered group map shared by every converted
// record. Combining never adds or removes groups: the output record has
// exactly this schema, with individual groups possibly absent.
func GroupNames() []string {
	names := make([]string, len(groupMap))
	copy(names, groupMap)
	return names
}

// EchodataSpec represents one converted instrument-survey record.
//
// A record is produced by parsing one raw acquisition file from an
// echosounder or current profiler, or by combining several such records
// into one logical deployment-spanning record. Either way it has the same
// shape: a sonar model tag, the fixed group map, and per group either a
// dataset or absence.
type EchodataSpec struct {
	// Instrument model this record was acquired with.
	//
	// One of "AZFP", "EK60", "EK80", "EA640". Required for combining:
	// all records in one combine call must share the same non-empty model,
	// because the model selects the per-group concatenation policy.
	SonarModel string `json:"sonarModel"`

	// Path of the raw instrument file this record was parsed from.
	//
	// Used as the record's origin identifier in the combined provenance
	// group. May be empty for records reopened from converted storage;
	// ConvertedRawPath is the fallback identifier in that case.
	SourceFile string `json:"sourceFile,omitempty"`

	// Path of the converted container this record was reopened from.
	//
	// Fallback origin identifier when SourceFile is empty.
	ConvertedRawPath string `json:"convertedRawPath,omitempty"`

	// Per-group datasets, keyed by the canonical group names.
	//
	// A missing key (or nil value) means the group is absent from this
	// record. Keys outside GroupNames() are ignored by the combine engine.
	Groups map[string]*DatasetSpec `json:"groups"`
}
