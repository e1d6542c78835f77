package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	MaxAttempts   = 3
	RetryBaseWait = 2 * time.Second
	RetryMaxWait  = 10 * time.Second
)

// ErrRetriesExhausted marks a completion that failed on every attempt.
// Callers record a placeholder for the item instead of aborting the batch.
var ErrRetriesExhausted = errors.New("completion retries exhausted")

// CompleteWithRetry runs Complete with a capped number of attempts and an
// exponentially increasing wait between them. Token usage from failed
// attempts still counts toward the returned accumulator.
func (c *Client) CompleteWithRetry(ctx context.Context, messages []Message) (string, Usage, error) {
	var total Usage
	var lastErr error
	wait := RetryBaseWait

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		reply, usage, err := c.Complete(ctx, messages)
		total.Add(usage)
		if err == nil {
			return reply, total, nil
		}
		lastErr = err
		log.Printf("[WARN] Completion attempt %d/%d failed: %v", attempt, MaxAttempts, err)

		if attempt == MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", total, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > RetryMaxWait {
			wait = RetryMaxWait
		}
	}

	return "", total, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, MaxAttempts, lastErr)
}
