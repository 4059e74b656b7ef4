// Package httpclient provides a configurable HTTP adapter with default
// authentication, pooled connections, and classified errors.
//
// Subpackage rest adds JSON-typed helpers on top of the adapter.
//
// # Basic Usage
//
//	a, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://llm.api.cloud.yandex.net/foundationModels/v1",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth(token),
//	})
//
//	resp, err := a.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/completion",
//	    Body:   payload,
//	})
package httpclient
