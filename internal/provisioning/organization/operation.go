package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/pipelinekit/internal/domain"
	"github.com/imamik/pipelinekit/internal/platform/devops"
	"github.com/imamik/pipelinekit/internal/platform/rest"
	"github.com/imamik/pipelinekit/internal/util/retry"
)

const defaultPollInterval = 2 * time.Second

// OperationFailedError is a server-side operation that ended in "failed".
type OperationFailedError struct {
	Operation string
	Message   string
}

func (e *OperationFailedError) Error() string {
	if e.Message == "" {
		return e.Operation + " failed"
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// waitForOperation polls operationURL until it succeeds or fails. Transient
// poll errors are retried within the same budget; anything else stops.
func waitForOperation(ctx context.Context, api API, operationURL, what string, opts []retry.Option) error {
	var last string
	opts = append(append([]retry.Option{}, opts...), retry.WithRetryIf(rest.IsTransient))

	err := retry.Poll(ctx, func(ctx context.Context) (bool, error) {
		op, err := api.GetOperation(ctx, operationURL)
		if err != nil {
			return false, err
		}
		last = op.Status
		switch strings.ToLower(op.Status) {
		case devops.OperationSucceeded:
			return true, nil
		case devops.OperationFailed:
			msg := op.ResultMessage
			if msg == "" {
				msg = op.DetailedMessage
			}
			return false, retry.Fatal(&OperationFailedError{Operation: what, Message: msg})
		default:
			return false, nil
		}
	}, opts...)

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		detail := "last status " + last
		if exhausted.Err != nil {
			detail = exhausted.Err.Error()
		}
		return &domain.TimeoutError{Operation: what, Attempts: exhausted.Attempts, Detail: detail}
	}
	return err
}
