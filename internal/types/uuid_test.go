package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithPrefix(t *testing.T) {
	id := GenerateUUIDWithPrefix(UUID_PREFIX_WALLET_TRANSACTION)
	assert.True(t, strings.HasPrefix(id, UUID_PREFIX_WALLET_TRANSACTION+"_"))

	assert.NotEqual(t, id, GenerateUUIDWithPrefix(UUID_PREFIX_WALLET_TRANSACTION))
	assert.NotContains(t, GenerateUUIDWithPrefix(""), "_")
}

func TestGenerateShortIDWithPrefix(t *testing.T) {
	id := GenerateShortIDWithPrefix(UUID_PREFIX_REQUEST)
	assert.NotEmpty(t, id)
	assert.True(t, strings.HasPrefix(id, strings.ToUpper(UUID_PREFIX_REQUEST)))
	assert.LessOrEqual(t, len(id), 12)

	assert.NotEqual(t, id, GenerateShortIDWithPrefix(UUID_PREFIX_REQUEST))
}
