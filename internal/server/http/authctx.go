package httpserver

import (
	"context"

	"github.com/and161185/notes-keeper/internal/model"
)

type ctxKey string

const (
	identityKey ctxKey = "nk.identity"
	holderKey   ctxKey = "nk.identityHolder"
)

// WithIdentity stores the authenticated caller in context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated caller from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok
}

// identityHolder lets the outer logging middleware see the identity resolved
// further down the chain.
type identityHolder struct{ id model.Identity }

func withHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

func holderFromCtx(ctx context.Context) *identityHolder {
	h, _ := ctx.Value(holderKey).(*identityHolder)
	return h
}
