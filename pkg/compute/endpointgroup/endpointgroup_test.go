// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package endpointgroup_test

import (
	"context"
	"testing"

	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/endpointgroup"
	"github.com/stratastor/cumulus/pkg/compute/testutil"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGroup(t *testing.T, env *testutil.TestEnv) *endpointgroup.Group {
	t.Helper()
	ctx := context.Background()

	group := endpointgroup.New(env.Scope, testutil.GenerateResourceName())
	op, err := group.Create(ctx, endpointgroup.Config{
		Network:     "net-0",
		Subnetwork:  "subnet-0",
		DefaultPort: 8080,
	})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))
	return group
}

func TestEndpointGroupCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	group := createGroup(t, env)

	meta, err := group.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "net-0", meta["network"])
	assert.Equal(t, "subnet-0", meta["subnetwork"])
	assert.Equal(t, float64(8080), meta["defaultPort"])
}

func TestEndpointGroupCreateValidation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	group := endpointgroup.New(env.Scope, testutil.GenerateResourceName())
	_, err := group.Create(context.Background(), endpointgroup.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ResourceInvalidConfig))
}

func TestEndpointGroupAttachDetach(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	group := createGroup(t, env)

	endpoints := []endpointgroup.Endpoint{
		{Instance: "vm-1", IPAddress: "10.0.0.4", Port: 8080},
		{Instance: "vm-2", IPAddress: "10.0.0.5", Port: 8080},
	}

	op, err := group.AttachEndpoints(ctx, endpoints)
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	listed, err := group.ListEndpoints(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	op, err = group.DetachEndpoints(ctx, endpoints[:1])
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	listed, err = group.ListEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "vm-2", listed[0].Instance)
}

func TestEndpointGroupAttachEmpty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	group := createGroup(t, env)

	_, err := group.AttachEndpoints(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ResourceInvalidConfig))

	_, err = group.DetachEndpoints(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ResourceInvalidConfig))
}

func TestEndpointGroupAttachMissingGroup(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	group := endpointgroup.New(env.Scope, "no-such-group")
	_, err := group.AttachEndpoints(context.Background(), []endpointgroup.Endpoint{
		{Instance: "vm-1"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestEndpointGroupDelete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	group := createGroup(t, env)

	op, err := group.Delete(ctx)
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	exists, err := group.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
