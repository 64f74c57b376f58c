package dto

import (
	"os"
	"testing"

	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/testutil"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/mealcart/mealcart/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	validator.NewValidator()
	os.Exit(m.Run())
}

func TestWalletOperationRequestValidate(t *testing.T) {
	req := &WalletOperationRequest{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(100),
		SourceType: types.TransactionSourceOrderPayment,
		Reference:  "ref-1",
	}
	assert.NoError(t, req.Validate())

	missing := &WalletOperationRequest{
		Amount:     decimal.NewFromInt(100),
		SourceType: types.TransactionSourceOrderPayment,
		Reference:  "ref-1",
	}
	err := missing.Validate()
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestWalletOperationRequestToOperation(t *testing.T) {
	req := &WalletOperationRequest{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(100),
		SourceType: types.TransactionSourceOrderPayment,
		SourceID:   "ord-1",
		Reference:  "ref-1",
		Metadata:   types.Metadata{"note": "lunch"},
	}

	op := req.ToOperation(types.TransactionTypeDebit)
	assert.Equal(t, types.TransactionTypeDebit, op.Type)
	assert.Equal(t, req.UserID, op.UserID)
	assert.Equal(t, req.Reference, op.Reference)
	assert.True(t, op.Amount.Equal(req.Amount))
}

func TestInitializeFundingRequestValidate(t *testing.T) {
	req := &InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	}
	assert.NoError(t, req.Validate())

	negative := &InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(-1),
		ProviderRef: "prov-1",
	}
	err := negative.Validate()
	assert.Error(t, err)
	assert.True(t, ierr.IsInvalidAmount(err))
}

func TestInitializeFundingRequestToFunding(t *testing.T) {
	req := &InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	}

	f := req.ToFunding(types.GetDefaultBaseModel(testutil.SetupContext()))
	assert.Equal(t, types.FundingStatusPending, f.FundingStatus)
	assert.Equal(t, "prov-1", f.ProviderRef)
	assert.NotEmpty(t, f.ID)
}

func TestGatewayWebhookRequestValidate(t *testing.T) {
	ok := &GatewayWebhookRequest{
		ProviderRef: "prov-1",
		Event:       GatewayEventPaymentSucceeded,
	}
	assert.NoError(t, ok.Validate())

	unknown := &GatewayWebhookRequest{
		ProviderRef: "prov-1",
		Event:       "payment.unknown",
	}
	err := unknown.Validate()
	assert.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}
