// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package autosync_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute/autosync"
	"github.com/stratastor/cumulus/pkg/compute/testutil"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// The manager is a process-wide singleton, so all scenarios share one
// instance and run as subtests.
func TestManager(t *testing.T) {
	env := testutil.NewTestEnv(t)
	defer env.Cleanup()

	stateDir := t.TempDir()
	manager, err := autosync.GetManager(env.Scope, stateDir)
	require.NoError(t, err)

	var policyID string

	t.Run("add policy", func(t *testing.T) {
		policyID, err = manager.AddPolicy(autosync.Policy{
			Collection: constants.CollectionInstances,
			Name:       "vm-1",
			Interval:   "30s",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, policyID)

		policies := manager.ListPolicies()
		require.Len(t, policies, 1)
		assert.Equal(t, "vm-1", policies[0].Name)
	})

	t.Run("rejects invalid policy", func(t *testing.T) {
		_, err := manager.AddPolicy(autosync.Policy{Name: "vm-1", Interval: "30s"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.SyncPolicyInvalid))

		_, err = manager.AddPolicy(autosync.Policy{
			Collection: constants.CollectionInstances,
			Name:       "vm-1",
			Interval:   "soon",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.SyncPolicyInvalid))
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		_, err := manager.AddPolicy(autosync.Policy{
			ID:         policyID,
			Collection: constants.CollectionInstances,
			Name:       "vm-2",
			Interval:   "30s",
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.SyncPolicyExists))
	})

	t.Run("persists state", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(stateDir, constants.SyncStateFileName))
		require.NoError(t, err)

		var state autosync.SyncConfig
		require.NoError(t, yaml.Unmarshal(data, &state))
		require.Len(t, state.Policies, 1)
		assert.Equal(t, policyID, state.Policies[0].ID)
	})

	t.Run("start and stop", func(t *testing.T) {
		require.NoError(t, manager.Start())
		// Starting twice is a no-op
		require.NoError(t, manager.Start())
		require.NoError(t, manager.Stop())
	})

	t.Run("remove policy", func(t *testing.T) {
		require.NoError(t, manager.RemovePolicy(policyID))
		assert.Empty(t, manager.ListPolicies())

		err := manager.RemovePolicy(policyID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.SyncPolicyNotFound))
	})
}
