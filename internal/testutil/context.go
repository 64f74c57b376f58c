package testutil

import (
	"context"

	"github.com/mealcart/mealcart/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateShortIDWithPrefix(types.UUID_PREFIX_REQUEST))
	return ctx
}
