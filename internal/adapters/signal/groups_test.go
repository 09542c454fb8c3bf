package signal

import (
	"testing"

	"github.com/dkeye/roomrelay/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGroups(t *testing.T) {
	g := NewGroups()
	g.Add("X", "A", "u1")
	g.Add("Y", "A", "u2")

	assert.ElementsMatch(t, []domain.ConnID{"X", "Y"}, g.Resolve("A"))
	assert.Equal(t, []domain.ConnID{"X"}, g.Resolve("u1"))
	assert.Equal(t, []domain.ConnID{"X"}, g.Resolve("X"))

	g.Reset("X")
	assert.Equal(t, []domain.ConnID{"Y"}, g.Resolve("A"))
	assert.Empty(t, g.Resolve("u1"))
	assert.Equal(t, []domain.ConnID{"X"}, g.Resolve("X"), "own id survives reset")

	g.RemoveAll("Y")
	assert.Empty(t, g.Resolve("A"))
	assert.Empty(t, g.Resolve("Y"))
	assert.Empty(t, g.members["A"])
}
