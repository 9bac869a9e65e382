// Package resilience provides the retry and timeout policies applied to
// dashboard API calls.
//
// A Retry re-runs an operation with exponential backoff while its RetryIf
// classifier reports the failure as transient. A Timeout bounds a single
// attempt. An Executor composes them so every attempt gets its own deadline:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts: 3,
//	        RetryIf:     apiclient.IsRetryable,
//	    })),
//	    resilience.WithTimeout(30*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return doRequest(ctx)
//	})
package resilience
