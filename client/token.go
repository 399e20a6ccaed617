package client

import (
	"context"
	"os"
	"strings"
)

// TokenProvider supplies the bearer credential attached to every request.
// Implementations are free to read storage, refresh sessions, or return
// an empty token, in which case the Authorization header is omitted.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

func (f TokenProviderFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// StaticToken returns a provider that always yields the given token.
func StaticToken(token string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

// EnvToken returns a provider that reads the token from an environment
// variable on every request.
func EnvToken(key string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) {
		return os.Getenv(key), nil
	})
}

// FileToken returns a provider that reads the token from a file on every
// request. A missing file yields an empty token rather than an error, so
// logged-out sessions degrade to anonymous requests.
func FileToken(path string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	})
}
