// Package retry provides bounded retry and polling for operations that the
// control plane completes asynchronously.
//
// [WithExponentialBackoff] retries a failing operation; [Poll] waits for a
// condition to become true. Both honour context cancellation between
// attempts, stop immediately on errors marked with [Fatal], and report an
// exhausted budget as *[ExhaustedError]. Fixed-interval polling uses
// [WithFixedInterval] together with [WithMaxAttempts].
package retry
