package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "version: dev\ncommit: unknown\nbuilt: unknown\n", String())
	assert.Equal(t, "oceanwatch/dev", UserAgent())
}
