// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package autoscaler_test

import (
	"context"
	"testing"

	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/autoscaler"
	"github.com/stratastor/cumulus/pkg/compute/testutil"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoscalerCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	as := autoscaler.New(env.Scope, testutil.GenerateResourceName())
	op, err := as.Create(ctx, autoscaler.Config{
		Target: "instance-group-1",
		Policy: autoscaler.Policy{
			CoolDown:    60,
			CPU:         0.6,
			MinReplicas: 2,
			MaxReplicas: 10,
		},
	})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	meta, err := as.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "instance-group-1", meta["target"])

	policy, ok := meta["autoscalingPolicy"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.6, policy["cpu"])
	// JSON numbers decode as float64
	assert.Equal(t, float64(60), policy["coolDown"])
	assert.Equal(t, float64(2), policy["minReplicas"])
	assert.Equal(t, float64(10), policy["maxReplicas"])
}

func TestAutoscalerCreateValidation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	as := autoscaler.New(env.Scope, testutil.GenerateResourceName())

	t.Run("missing target", func(t *testing.T) {
		_, err := as.Create(ctx, autoscaler.Config{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ResourceInvalidConfig))
	})

	t.Run("replica bounds inverted", func(t *testing.T) {
		_, err := as.Create(ctx, autoscaler.Config{
			Target: "instance-group-1",
			Policy: autoscaler.Policy{MinReplicas: 5, MaxReplicas: 2},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ResourceInvalidConfig))
	})
}

func TestAutoscalerSetPolicy(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	as := autoscaler.New(env.Scope, testutil.GenerateResourceName())
	op, err := as.Create(ctx, autoscaler.Config{
		Target: "instance-group-1",
		Policy: autoscaler.Policy{CPU: 0.6},
	})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	op, err = as.SetPolicy(ctx, autoscaler.Policy{CPU: 0.8, MaxReplicas: 20})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	meta, err := as.Get(ctx)
	require.NoError(t, err)
	policy, ok := meta["autoscalingPolicy"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.8, policy["cpu"])
	assert.Equal(t, float64(20), policy["maxReplicas"])
	// The target is untouched by a policy patch
	assert.Equal(t, "instance-group-1", meta["target"])
}

func TestAutoscalerDelete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	as := autoscaler.New(env.Scope, testutil.GenerateResourceName())
	op, err := as.Create(ctx, autoscaler.Config{Target: "instance-group-1"})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	exists, err := as.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	op, err = as.Delete(ctx)
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	exists, err = as.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
