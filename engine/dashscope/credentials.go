package dashscope

import (
	"context"
	"strings"
)

// CredentialProvider hands out the bearer token for a call.
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// StaticAPIKey is a fixed token.
type StaticAPIKey string

func (k StaticAPIKey) APIKey(_ context.Context) (string, error) {
	key := strings.TrimSpace(string(k))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// CredentialFunc adapts a function to CredentialProvider.
type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) APIKey(ctx context.Context) (string, error) {
	return f(ctx)
}

func bearer(key string) string {
	return "Bearer " + key
}
