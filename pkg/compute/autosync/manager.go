// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package autosync keeps the metadata cache of selected resource
// handles fresh by refreshing them on a schedule. Policies are
// persisted to a yaml state file so they survive restarts.
package autosync

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stratastor/logger"
	"gopkg.in/yaml.v3"
)

const syncTimeout = 30 * time.Second

// Policy schedules periodic metadata refreshes of one resource.
type Policy struct {
	ID         string `yaml:"id"`
	Collection string `yaml:"collection"`
	Name       string `yaml:"name"`
	Interval   string `yaml:"interval"` // Go duration string, e.g. "30s"
}

// SyncConfig is the persisted state file layout.
type SyncConfig struct {
	Policies []Policy `yaml:"policies"`
}

// Manager schedules metadata refresh jobs for registered policies.
type Manager struct {
	logger     logger.Logger
	scope      *compute.Scope
	scheduler  gocron.Scheduler
	configPath string
	config     SyncConfig
	jobMapping map[string]uuid.UUID // Maps policy ID to scheduler job ID
	mu         sync.RWMutex
	started    bool
}

// Global instance and mutex for singleton pattern
var (
	globalManager *Manager
	initMutex     sync.Mutex
)

// GetManager returns the global manager instance, creating it if necessary
func GetManager(scope *compute.Scope, stateDir string) (*Manager, error) {
	initMutex.Lock()
	defer initMutex.Unlock()

	if globalManager == nil {
		var err error
		globalManager, err = newManager(scope, stateDir)
		if err != nil {
			return nil, err
		}
	}

	return globalManager, nil
}

func newManager(scope *compute.Scope, stateDir string) (*Manager, error) {
	l, err := logger.NewTag(config.NewLoggerConfig(config.GetConfig()), "autosync")
	if err != nil {
		return nil, errors.Wrap(err, errors.LoggerError)
	}

	if stateDir == "" {
		stateDir = config.GetStateDir()
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.SyncStateWriteFailed)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, errors.SyncSchedulerError)
	}

	m := &Manager{
		logger:     l,
		scope:      scope,
		scheduler:  scheduler,
		configPath: filepath.Join(stateDir, constants.SyncStateFileName),
		jobMapping: make(map[string]uuid.UUID),
	}

	if err := m.loadConfig(); err != nil {
		return nil, err
	}

	return m, nil
}

// Start schedules all persisted policies and starts the scheduler.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return nil
	}

	for _, policy := range m.config.Policies {
		if err := m.scheduleLocked(policy); err != nil {
			return err
		}
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Info("Autosync manager started", "policies", len(m.config.Policies))
	return nil
}

// Stop shuts the scheduler down. Registered policies remain persisted.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return nil
	}

	if err := m.scheduler.Shutdown(); err != nil {
		return errors.Wrap(err, errors.SyncSchedulerError)
	}
	m.started = false
	m.jobMapping = make(map[string]uuid.UUID)
	return nil
}

// AddPolicy validates, persists and (if running) schedules a policy.
// Returns the policy ID.
func (m *Manager) AddPolicy(policy Policy) (string, error) {
	if policy.Collection == "" || policy.Name == "" {
		return "", errors.New(errors.SyncPolicyInvalid, "collection and name are required")
	}
	if _, err := time.ParseDuration(policy.Interval); err != nil {
		return "", errors.New(errors.SyncPolicyInvalid, "invalid interval: "+policy.Interval)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if policy.ID == "" {
		policy.ID = uuid.New().String()
	}
	for _, existing := range m.config.Policies {
		if existing.ID == policy.ID {
			return "", errors.New(errors.SyncPolicyExists, policy.ID)
		}
	}

	m.config.Policies = append(m.config.Policies, policy)
	if err := m.saveConfigLocked(); err != nil {
		return "", err
	}

	if m.started {
		if err := m.scheduleLocked(policy); err != nil {
			return "", err
		}
	}

	return policy.ID, nil
}

// RemovePolicy unschedules and forgets a policy.
func (m *Manager) RemovePolicy(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, policy := range m.config.Policies {
		if policy.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New(errors.SyncPolicyNotFound, id)
	}

	if jobID, ok := m.jobMapping[id]; ok {
		if err := m.scheduler.RemoveJob(jobID); err != nil {
			m.logger.Warn("Failed to remove scheduled job", "policy", id, "err", err)
		}
		delete(m.jobMapping, id)
	}

	m.config.Policies = append(m.config.Policies[:idx], m.config.Policies[idx+1:]...)
	return m.saveConfigLocked()
}

// ListPolicies returns a snapshot of the registered policies.
func (m *Manager) ListPolicies() []Policy {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Policy, len(m.config.Policies))
	copy(out, m.config.Policies)
	return out
}

func (m *Manager) scheduleLocked(policy Policy) error {
	interval, err := time.ParseDuration(policy.Interval)
	if err != nil {
		return errors.New(errors.SyncPolicyInvalid, "invalid interval: "+policy.Interval)
	}

	job, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.runSync, policy),
	)
	if err != nil {
		return errors.Wrap(err, errors.SyncSchedulerError)
	}

	m.jobMapping[policy.ID] = job.ID()
	return nil
}

func (m *Manager) runSync(policy Policy) {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	res := m.scope.Resource(policy.Collection, policy.Name)
	if _, err := res.GetMetadata(ctx); err != nil {
		if errors.IsNotFound(err) {
			m.logger.Warn("Synced resource no longer exists",
				"collection", policy.Collection, "name", policy.Name)
			return
		}
		m.logger.Error("Metadata sync failed",
			"collection", policy.Collection, "name", policy.Name, "err", err)
		return
	}

	m.logger.Debug("Metadata synced", "collection", policy.Collection, "name", policy.Name)
}

func (m *Manager) loadConfig() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.SyncStateReadFailed)
	}

	if err := yaml.Unmarshal(data, &m.config); err != nil {
		return errors.Wrap(err, errors.SyncStateReadFailed)
	}
	return nil
}

func (m *Manager) saveConfigLocked() error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return errors.Wrap(err, errors.SyncStateWriteFailed)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.SyncStateWriteFailed)
	}
	return nil
}
