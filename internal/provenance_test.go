package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleCombinedProvenance(t *testing.T) {
	t.Run("records source filenames in input order over the file dimension", func(t *testing.T) {
		paths := []string{"survey-D20170615-T190843.raw", "survey-D20170615-T195843.raw", "survey-D20170615-T204843.raw"}

		provenance := AssembleCombinedProvenance(paths, SoftwareIdentity{})

		size, has := provenance.DimSize("file")
		require.True(t, has)
		assert.Equal(t, 3, size)

		v, has := provenance.Var("src_filenames")
		require.True(t, has)
		assert.Equal(t, []string{"file"}, v.Dims)
		assert.Equal(t, paths, v.Values)
	})

	t.Run("defaults to the library software identity", func(t *testing.T) {
		provenance := AssembleCombinedProvenance(nil, SoftwareIdentity{})

		assert.Equal(t, SoftwareName, provenance.Attrs()["conversion_software_name"])
		assert.Equal(t, SoftwareVersion, provenance.Attrs()["conversion_software_version"])
	})

	t.Run("uses the host-supplied software identity", func(t *testing.T) {
		provenance := AssembleCombinedProvenance(nil, SoftwareIdentity{Name: "shipboard-pipeline", Version: "2.3.0"})

		assert.Equal(t, "shipboard-pipeline", provenance.Attrs()["conversion_software_name"])
		assert.Equal(t, "2.3.0", provenance.Attrs()["conversion_software_version"])
	})

	t.Run("stamps the conversion time as UTC seconds with Z suffix", func(t *testing.T) {
		provenance := AssembleCombinedProvenance(nil, SoftwareIdentity{})

		stamp, ok := provenance.Attrs()["conversion_time"].(string)
		require.True(t, ok)
		parsed, err := time.Parse("2006-01-02T15:04:05Z", stamp)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
	})

	t.Run("does not alias the caller's path slice", func(t *testing.T) {
		paths := []string{"a.raw", "b.raw"}
		provenance := AssembleCombinedProvenance(paths, SoftwareIdentity{})

		paths[0] = "mangled"

		v, _ := provenance.Var("src_filenames")
		assert.Equal(t, []string{"a.raw", "b.raw"}, v.Values)
	})
}

func TestAppendOldTime(t *testing.T) {
	t.Run("attaches the pre-repair axis as a coordinate variable", func(t *testing.T) {
		provenance := AssembleCombinedProvenance([]string{"a.raw"}, SoftwareIdentity{})

		err := AppendOldTime(provenance, "old_ping_time", []int64{10, 20, 15})

		require.NoError(t, err)
		v, has := provenance.Var("old_ping_time")
		require.True(t, has)
		assert.Equal(t, []string{"old_ping_time"}, v.Dims)
		assert.Equal(t, []int64{10, 20, 15}, v.Values)
		size, _ := provenance.DimSize("old_ping_time")
		assert.Equal(t, 3, size)
	})

	t.Run("never overwrites a reserved name", func(t *testing.T) {
		provenance := AssembleCombinedProvenance([]string{"a.raw"}, SoftwareIdentity{})
		require.NoError(t, AppendOldTime(provenance, "old_ping_time", []int64{10}))

		err := AppendOldTime(provenance, "old_ping_time", []int64{99})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestAppendGroupAttrs(t *testing.T) {
	t.Run("attaches one attrs-snapshot variable per group", func(t *testing.T) {
		provenance := AssembleCombinedProvenance([]string{"a.raw", "b.raw"}, SoftwareIdentity{})

		err := AppendGroupAttrs(provenance, map[string][]Attrs{
			"environment": {{"a": 1}, {"a": 2}},
			"beam":        {{"b": "x"}, {"b": "y"}},
		})

		require.NoError(t, err)
		env, has := provenance.Var("environment_attrs")
		require.True(t, has)
		assert.Equal(t, []string{"environment_file"}, env.Dims)
		assert.Equal(t, []Attrs{{"a": 1}, {"a": 2}}, env.Values)

		beam, has := provenance.Var("beam_attrs")
		require.True(t, has)
		assert.Equal(t, []Attrs{{"b": "x"}, {"b": "y"}}, beam.Values)
	})

	t.Run("never overwrites a reserved name", func(t *testing.T) {
		provenance := AssembleCombinedProvenance([]string{"a.raw"}, SoftwareIdentity{})
		require.NoError(t, AppendGroupAttrs(provenance, map[string][]Attrs{"beam": {{"a": 1}}}))

		err := AppendGroupAttrs(provenance, map[string][]Attrs{"beam": {{"a": 2}}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}
