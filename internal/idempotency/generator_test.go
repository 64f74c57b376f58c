package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKeyIsDeterministic(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeOrderRefund, map[string]interface{}{"source_id": "ord-1"})
	b := g.GenerateKey(ScopeOrderRefund, map[string]interface{}{"source_id": "ord-1"})
	assert.Equal(t, a, b)
}

func TestGenerateKeyVariesByScopeAndParams(t *testing.T) {
	g := NewGenerator()

	base := g.GenerateKey(ScopeOrderRefund, map[string]interface{}{"source_id": "ord-1"})
	otherScope := g.GenerateKey(ScopePackageOrderRefund, map[string]interface{}{"source_id": "ord-1"})
	otherParams := g.GenerateKey(ScopeOrderRefund, map[string]interface{}{"source_id": "ord-2"})

	assert.NotEqual(t, base, otherScope)
	assert.NotEqual(t, base, otherParams)
}

func TestGenerateKeyIgnoresParamOrder(t *testing.T) {
	g := NewGenerator()

	a := g.GenerateKey(ScopeWalletFunding, map[string]interface{}{
		"provider_ref": "prov-1",
		"user_id":      "user-1",
	})
	b := g.GenerateKey(ScopeWalletFunding, map[string]interface{}{
		"user_id":      "user-1",
		"provider_ref": "prov-1",
	})
	assert.Equal(t, a, b)
}

func TestValidateKey(t *testing.T) {
	g := NewGenerator()
	params := map[string]interface{}{"provider_ref": "prov-1"}

	key := g.GenerateKey(ScopeWalletFunding, params)
	assert.True(t, g.ValidateKey(ScopeWalletFunding, params, key))
	assert.False(t, g.ValidateKey(ScopeOrderRefund, params, key))
	assert.False(t, g.ValidateKey(ScopeWalletFunding, map[string]interface{}{"provider_ref": "prov-2"}, key))
}
