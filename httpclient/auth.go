package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthAPIKey sends the key in a header, optionally prefixed with a scheme.
	AuthAPIKey
	// AuthCustom runs a caller-supplied request modifier.
	AuthCustom
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Key is the API key value (AuthAPIKey).
	Key string
	// Name is the header carrying the key. Defaults to "X-API-Key".
	Name string
	// Scheme, when set, is written before the key: "<Scheme> <Key>".
	Scheme string
	// Apply modifies the request (AuthCustom).
	Apply func(*http.Request)
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuth creates an API key auth config sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: "X-API-Key"}
}

// APIKeyAuthorization sends the key as "Authorization: <scheme> <key>".
func APIKeyAuthorization(scheme, key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Name: "Authorization", Scheme: scheme}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// HeaderValue returns the header name and value this config would set.
// ok is false for AuthNone and AuthCustom.
func (a *AuthConfig) HeaderValue() (name, value string, ok bool) {
	if a == nil {
		return "", "", false
	}
	switch a.Type {
	case AuthBearer:
		return "Authorization", "Bearer " + a.Token, true
	case AuthAPIKey:
		name = a.Name
		if name == "" {
			name = "X-API-Key"
		}
		value = a.Key
		if a.Scheme != "" {
			value = a.Scheme + " " + a.Key
		}
		return name, value, true
	}
	return "", "", false
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	if name, value, ok := a.HeaderValue(); ok {
		req.Header.Set(name, value)
		return
	}
	if a.Type == AuthCustom && a.Apply != nil {
		a.Apply(req)
	}
}
