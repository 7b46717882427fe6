package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupNames(t *testing.T) {
	t.Run("returns the fixed group map in order", func(t *testing.T) {
		names := GroupNames()

		assert.Equal(t, []string{
			"top",
			"environment",
			"platform",
			"nmea",
			"provenance",
			"sonar",
			"beam",
			"beam_power",
			"vendor",
		}, names)
	})

	t.Run("returns a copy callers cannot corrupt", func(t *testing.T) {
		names := GroupNames()
		names[0] = "mangled"

		assert.Equal(t, GroupTop, GroupNames()[0])
	})
}
