package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, UserID("u1"), id)

	id, err = ParseUserID("")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = ParseUserID(strings.Repeat("x", MaxUserIDLen))
	require.NoError(t, err)
	assert.Len(t, string(id), MaxUserIDLen)

	_, err = ParseUserID(strings.Repeat("x", MaxUserIDLen) + "alice")
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestNewConnIDUnique(t *testing.T) {
	assert.NotEqual(t, NewConnID(), NewConnID())
}
