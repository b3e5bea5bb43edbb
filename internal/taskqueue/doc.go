// Package taskqueue runs build tasks as external processes under bounded
// concurrency. Completion is delivered to the caller through a strictly
// sequential callback stream fed by a single consumer loop, so callers
// need no locking around the state their callbacks mutate.
package taskqueue
