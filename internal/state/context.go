package state

import "context"

// ConfigurationError marks a programmer error: a consumer reached for the
// store on a context it was never attached to. It is not a runtime
// condition to retry or surface to the user.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

type ctxKey struct{}

// NewContext attaches the session store to a context. The server does this
// once per request; the store itself outlives any single request.
func NewContext(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, store)
}

func FromContext(ctx context.Context) (*Store, error) {
	store, ok := ctx.Value(ctxKey{}).(*Store)
	if !ok || store == nil {
		return nil, &ConfigurationError{msg: "analysis store is not attached to this context"}
	}
	return store, nil
}
