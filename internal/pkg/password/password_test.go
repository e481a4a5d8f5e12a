package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("secret@123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret@123", hash)

	assert.True(t, Verify("secret@123", hash))
	assert.False(t, Verify("wrong", hash))
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	// deterministic
	assert.Equal(t, a, HashToken("token-a"))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("longenough"))
	assert.False(t, ValidatePassword("short"))
}
