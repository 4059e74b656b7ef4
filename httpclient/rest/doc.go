// Package rest provides JSON-typed helpers on top of the HTTP adapter.
//
//	client, err := rest.New(httpclient.Config{BaseURL: base})
//	resp, err := rest.Post[completionResponse](ctx, client, "/completion", payload,
//	    rest.WithHeaders(headers))
//
// Non-2xx responses return both the partially decoded response and the
// classified *httpclient.Error. A 2xx body that fails to decode yields a
// *DecodeError carrying the raw body.
package rest
