package application

import (
	"context"
	"fmt"
)

// superviseForever runs step until ctx ends. A failed or panicking step is handed to onError
// and the loop moves on; only cancellation (or an onError failure caused by it) stops it.
func superviseForever(
	ctx context.Context,
	step func(context.Context) error,
	onError func(context.Context, error) error,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := safeStep(ctx, step)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := onError(ctx, err); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// safeStep calls step with panic recovery.
func safeStep(ctx context.Context, step func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return step(ctx)
}
