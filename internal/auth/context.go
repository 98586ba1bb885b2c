package auth

import "context"

type userContextKey struct{}

type tokenContextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// ContextWithToken attaches the raw bearer token to the context so
// downstream calls can forward it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts the raw bearer token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
