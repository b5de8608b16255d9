// Package schedule provides the fixed-interval trigger behind the recurring
// daemon loops (journal pruning, log retention, health sweeps).
//
// A Trigger runs its callback synchronously in the loop goroutine, so
// invocations never overlap themselves: ticks that elapse while a callback
// is still running are coalesced by the ticker and effectively skipped.
// Stop interrupts the wait immediately and guarantees no further invocation
// once it returns.
package schedule
