package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageID(t *testing.T) {
	id := MessageID("exchange_requests", 2, 41)

	assert.Equal(t, id, MessageID("exchange_requests", 2, 41))
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceOID, []byte("exchange_requests-2-41")).String(), id)
	assert.NotEqual(t, id, MessageID("exchange_requests", 2, 42))
	assert.NotEqual(t, id, MessageID("exchange_requests", 3, 41))

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
