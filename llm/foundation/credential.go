package foundation

import (
	"github.com/kbukum/yagpt/errors"
	"github.com/kbukum/yagpt/httpclient"
)

const (
	headerFolderID = "x-folder-id"
	apiKeyScheme   = "Api-Key"
)

// authorization picks the request credential: API key first, then IAM token.
func (c *Config) authorization() (*httpclient.AuthConfig, error) {
	switch {
	case c.APIKey != "":
		return httpclient.APIKeyAuthorization(apiKeyScheme, c.APIKey), nil
	case c.IAMToken != "":
		return httpclient.BearerAuth(c.IAMToken), nil
	default:
		return nil, errors.MissingCredential("")
	}
}

// bearer returns the IAM token credential used for asynchronous calls.
func (c *Config) bearer() (*httpclient.AuthConfig, error) {
	if c.IAMToken == "" {
		return nil, errors.MissingCredential("IAM token is required for asynchronous completion")
	}
	return httpclient.BearerAuth(c.IAMToken), nil
}

func (c *Config) headers() map[string]string {
	return map[string]string{headerFolderID: c.FolderID}
}

// Headers returns the full header set a synchronous request carries,
// including Authorization. It fails with MISSING_CREDENTIAL when neither
// credential is configured.
func (c *Config) Headers() (map[string]string, error) {
	auth, err := c.authorization()
	if err != nil {
		return nil, err
	}
	name, value, _ := auth.HeaderValue()
	h := c.headers()
	h["Content-Type"] = "application/json"
	h[name] = value
	return h, nil
}
