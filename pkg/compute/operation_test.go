// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package compute_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/testutil"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createOperation(t *testing.T, env *testutil.TestEnv) *compute.Operation {
	t.Helper()
	res := env.Scope.Resource(constants.CollectionInstances, testutil.GenerateResourceName())
	_, op, err := res.Create(context.Background(), nil)
	require.NoError(t, err)
	return op
}

func TestOperationLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	op := createOperation(t, env)

	// Fresh mutations start in a non-terminal state
	assert.Equal(t, compute.StatusPending, op.Status())
	assert.False(t, op.Done())
	assert.NoError(t, op.Err())

	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))
	assert.True(t, op.Done())
	assert.Empty(t, op.Errors())
	assert.NoError(t, op.Err())
	assert.NotEmpty(t, op.TargetLink())
}

func TestOperationFailed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	env.Store.FailNextOperation("QUOTA_EXCEEDED", "replicas", "too many replicas")
	op := createOperation(t, env)

	err := op.Wait(ctx, compute.WaitOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.OperationFailed))

	// The terminal error list is preserved on the handle
	opErrs := op.Errors()
	require.Len(t, opErrs, 1)
	assert.Equal(t, "QUOTA_EXCEEDED", opErrs[0].Code)
	assert.Equal(t, "replicas", opErrs[0].Location)
	assert.Equal(t, "too many replicas", opErrs[0].Message)

	// Waiting again on a terminal operation reports the same outcome
	// without another provider round trip
	err = op.Wait(ctx, compute.WaitOptions{})
	assert.True(t, errors.Is(err, errors.OperationFailed))
}

func TestOperationWaitTimeout(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	// Freeze operations in PENDING so the wait can never resolve
	env.Store.SetHold(true)
	op := createOperation(t, env)

	start := time.Now()
	err := op.Wait(ctx, compute.WaitOptions{
		Interval: 100 * time.Millisecond,
		Timeout:  300 * time.Millisecond,
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.OperationWaitTimeout))
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	assert.Less(t, elapsed, 450*time.Millisecond)

	// A local timeout never cancels the provider-side operation
	env.Store.SetHold(false)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))
}

func TestOperationWaitCancelled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	env.Store.SetHold(true)
	op := createOperation(t, env)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := op.Wait(ctx, compute.WaitOptions{Timeout: 5 * time.Second})
	require.Error(t, err)
	// Caller cancellation is not a timeout
	assert.False(t, errors.Is(err, errors.OperationWaitTimeout))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOperationPollNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	op := env.Scope.Operation("operation-does-not-exist")
	_, err := op.Poll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.OperationNotFound))
}

func TestOperationConcurrentWaiters(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	env.Store.FailNextOperation("INVALID_FIELD", "network", "network not found")
	op := createOperation(t, env)

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = op.Wait(ctx, compute.WaitOptions{})
		}(i)
	}
	wg.Wait()

	// Every waiter observes the same terminal outcome
	for _, err := range results {
		assert.True(t, errors.Is(err, errors.OperationFailed))
	}
}

func TestOperationHandleFromName(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	created := createOperation(t, env)

	// A handle built from the bare name tracks the same operation
	op := env.Scope.Operation(created.Name())
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))
	assert.True(t, op.Done())
}
