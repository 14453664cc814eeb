// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package compute_test

import (
	"context"
	"testing"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/testutil"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	created, op, err := res.Create(ctx, map[string]interface{}{
		"machineType": "small",
	})
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, name, created.Name())
	assert.NotEmpty(t, op.Name())

	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	// The provider must now report the submitted config
	meta, err := res.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, name, meta["name"])
	assert.Equal(t, "small", meta["machineType"])
}

func TestResourceCreateConflict(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	_, _, err := res.Create(ctx, nil)
	require.NoError(t, err)

	_, _, err = res.Create(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ResourceConflict))
}

func TestResourceCreateEmptyName(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	res := env.Scope.Resource(constants.CollectionInstances, "")
	_, _, err := res.Create(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ResourceInvalidName))
}

func TestResourceGetNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	res := env.Scope.Resource(constants.CollectionInstances, "no-such-resource")
	_, err := res.Get(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResourceGetAutoCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	got, err := res.Get(ctx, &compute.GetOptions{
		AutoCreate: true,
		Config:     map[string]interface{}{"machineType": "small"},
	})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name())

	// A second auto-create get must fetch, not create again
	got, err = res.Get(ctx, &compute.GetOptions{AutoCreate: true})
	require.NoError(t, err)
	assert.Equal(t, "small", got.Metadata()["machineType"])
}

func TestResourceExists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	exists, err := res.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	_, _, err = res.Create(ctx, nil)
	require.NoError(t, err)

	exists, err = res.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResourceDelete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	_, _, err := res.Create(ctx, nil)
	require.NoError(t, err)

	op, err := res.Delete(ctx)
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	exists, err := res.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestResourceDeleteNotFound(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	res := env.Scope.Resource(constants.CollectionInstances, "no-such-resource")
	_, err := res.Delete(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestResourceSetMetadata(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	name := testutil.GenerateResourceName()
	res := env.Scope.Resource(constants.CollectionInstances, name)

	_, _, err := res.Create(ctx, map[string]interface{}{"machineType": "small"})
	require.NoError(t, err)

	op, err := res.SetMetadata(ctx, map[string]interface{}{"machineType": "large"})
	require.NoError(t, err)
	require.NoError(t, op.Wait(ctx, compute.WaitOptions{}))

	meta, err := res.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "large", meta["machineType"])
	// Identifiers are merged into the patch by the handle
	assert.Equal(t, name, meta["name"])
	assert.Equal(t, env.Scope.Zone(), meta["zone"])
}

func TestScopeList(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()
	ctx := context.Background()

	names := map[string]bool{}
	for i := 0; i < 3; i++ {
		name := testutil.GenerateResourceName()
		names[name] = true
		_, _, err := env.Scope.Resource(constants.CollectionInstances, name).Create(ctx, nil)
		require.NoError(t, err)
	}

	items, err := env.Scope.List(ctx, constants.CollectionInstances)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, item := range items {
		assert.True(t, names[item["name"].(string)])
	}
}
