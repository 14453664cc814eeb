// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stratastor/cumulus/pkg/errors"
)

// Status enumerates provider operation states. Transitions are driven
// only by polling the provider; DONE is terminal.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
)

// OperationError is one per-item failure record of a DONE operation.
// The list is authoritative only once the operation reaches DONE.
type OperationError struct {
	Code     string `json:"code"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// operationResource is the provider's operation envelope, returned by
// every mutating call and by the operation status endpoint.
type operationResource struct {
	Name          string `json:"name"`
	Status        Status `json:"status"`
	OperationType string `json:"operationType,omitempty"`
	TargetLink    string `json:"targetLink,omitempty"`
	Error         *struct {
		Errors []OperationError `json:"errors"`
	} `json:"error,omitempty"`
}

// Operation is a client-side reference to an in-flight provider-side
// mutation. The cached status is the single point of synchronization:
// any number of waiters may read it, only Poll writes it, and writes
// are serialized by the handle mutex. A DONE status with a non-empty
// error list still means the mutation failed.
type Operation struct {
	scope *Scope
	name  string

	mu         sync.Mutex
	status     Status
	opErrs     []OperationError
	targetLink string
}

// WaitOptions bounds a single Wait call. Zero values fall back to the
// scope poll interval and an unbounded wait.
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

func newOperation(scope *Scope, res operationResource) *Operation {
	op := &Operation{scope: scope, name: res.Name}
	op.apply(res)
	return op
}

func (o *Operation) Name() string { return o.name }

func (o *Operation) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Operation) Done() bool {
	return o.Status() == StatusDone
}

// TargetLink references the resource the operation affects.
func (o *Operation) TargetLink() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.targetLink
}

// Errors returns a copy of the per-item failure records observed so
// far. Meaningful only once Done reports true.
func (o *Operation) Errors() []OperationError {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.opErrs == nil {
		return nil
	}
	out := make([]OperationError, len(o.opErrs))
	copy(out, o.opErrs)
	return out
}

// Err inspects the terminal outcome: nil while not DONE, nil for a
// clean DONE, and OperationFailed carrying the error list for a DONE
// with failures.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != StatusDone || len(o.opErrs) == 0 {
		return nil
	}

	detail, _ := json.Marshal(o.opErrs)
	return errors.New(errors.OperationFailed, "operation "+o.name).
		WithMetadata("errors", string(detail))
}

// Poll fetches the current operation status once. A transport failure
// propagates to the caller; the polling contract carries no retries.
func (o *Operation) Poll(ctx context.Context) (Status, error) {
	o.mu.Lock()
	if o.status == StatusDone {
		o.mu.Unlock()
		return StatusDone, nil
	}
	o.mu.Unlock()

	var res operationResource
	err := o.scope.do(ctx, http.MethodGet, o.scope.operationPath(o.name), nil, nil, &res)
	if err != nil {
		if errors.Is(err, errors.ResourceNotFound) {
			return "", errors.New(errors.OperationNotFound, o.name)
		}
		return "", err
	}

	switch res.Status {
	case StatusPending, StatusRunning, StatusDone:
	default:
		return "", errors.New(errors.OperationUnknownStatus, string(res.Status)).
			WithMetadata("operation", o.name)
	}

	o.apply(res)
	return res.Status, nil
}

// Wait polls the operation to its terminal state: suspend for the poll
// interval, fetch status, repeat. It resolves nil on a clean DONE,
// OperationFailed on a DONE with errors, and OperationWaitTimeout when
// the bound elapses first. Timing out or cancelling the context never
// cancels the provider-side operation; the mutation may still complete
// out-of-band. Concurrent waiters poll independently and each observe
// the same terminal outcome.
func (o *Operation) Wait(ctx context.Context, opts WaitOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = o.scope.PollInterval()
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if o.Done() {
		return o.Err()
	}

	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), waitCtx)
	for {
		next := policy.NextBackOff()
		if next == backoff.Stop {
			return o.waitInterrupted(ctx, waitCtx, opts)
		}

		timer := time.NewTimer(next)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return o.waitInterrupted(ctx, waitCtx, opts)
		case <-timer.C:
		}

		status, err := o.Poll(waitCtx)
		if err != nil {
			// The deadline can land mid-poll; report it as the
			// timeout it is rather than a transport failure.
			if waitCtx.Err() != nil {
				return o.waitInterrupted(ctx, waitCtx, opts)
			}
			return err
		}
		if status == StatusDone {
			return o.Err()
		}
	}
}

// waitInterrupted distinguishes the Wait timeout from caller-driven
// cancellation. Both are local-only conditions.
func (o *Operation) waitInterrupted(ctx, waitCtx context.Context, opts WaitOptions) error {
	if opts.Timeout > 0 && ctx.Err() == nil {
		return errors.New(errors.OperationWaitTimeout, "operation "+o.name).
			WithMetadata("timeout", opts.Timeout.String())
	}
	return waitCtx.Err()
}

func (o *Operation) apply(res operationResource) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// DONE is immutable terminal state
	if o.status == StatusDone {
		return
	}

	o.status = res.Status
	if res.TargetLink != "" {
		o.targetLink = res.TargetLink
	}
	if res.Error != nil {
		o.opErrs = res.Error.Errors
	}
}
