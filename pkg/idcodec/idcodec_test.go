package idcodec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 压缩后的标识必须能还原为原始 UUID
func TestProperty_EncodeDecodeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(id)) == id", prop.ForAll(
		func(b []byte) bool {
			var raw [16]byte
			copy(raw[:], b)
			id := uuid.UUID(raw).String()
			token, err := Encode(id)
			if err != nil {
				return false
			}
			got, ok := Decode(token)
			return ok && got == id
		},
		gen.SliceOfN(16, gen.UInt8()),
	))

	properties.TestingRun(t)
}

func TestDecode_RejectsNonUUID(t *testing.T) {
	token, err := Encode("team-notes")
	require.NoError(t, err)

	tests := []string{"", "team-notes", "%%%", token, "not base64 at all!"}
	for _, tt := range tests {
		_, ok := Decode(tt)
		assert.False(t, ok, tt)
	}
}

func TestShortID(t *testing.T) {
	id, err := NewShortID()
	require.NoError(t, err)
	assert.True(t, IsShortID(id), id)

	assert.False(t, IsShortID("abc"))
	assert.False(t, IsShortID("has space"))
	assert.False(t, IsShortID("0123456789abcdefg"))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(NewID()))
	assert.False(t, IsUUID("6ba7b8109dad11d180b400c04fd430c8"))
	assert.False(t, IsUUID("team-notes"))
}
