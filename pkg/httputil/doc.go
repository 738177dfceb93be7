// Package httputil provides retry helpers shared by the collagefm HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// returned error is marked transient with [Retryable]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Clients mark transport failures and 5xx responses as retryable. Client
// errors such as 404 or an unknown user fail fast.
//
// Response caching lives in [github.com/matzehuels/collagefm/pkg/cache].
package httputil
