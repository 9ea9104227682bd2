// Package resilience holds caller-side retry for restkit requests. The
// request engine settles every send exactly once and never retries; code
// that wants another attempt builds a fresh request and goes through Retry.
//
//	v, err := resilience.Retry(ctx, resilience.DefaultConfig(), func(ctx context.Context) (any, error) {
//		return client.Request(request.GET, "/users").Do(ctx)
//	})
package resilience
