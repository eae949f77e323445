package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()

	assert.Contains(t, s, "cleanlogs "+Version)
	assert.Contains(t, s, GoVersion)
	assert.NotEmpty(t, Revision)
}
