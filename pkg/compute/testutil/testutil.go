// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/server"
	"github.com/stratastor/logger"
	"golang.org/x/exp/rand"
)

const (
	// TestResourcePrefix is used as prefix for test resource names
	TestResourcePrefix = "test"

	// TestResourceNameLength is the length of random suffix
	TestResourceNameLength = 6

	// Chars used for random name generation
	resourceNameChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// TestEnv runs an in-process mock provider and a scope pointed at it.
type TestEnv struct {
	Scope  *compute.Scope
	Store  *server.Store
	URL    string
	server *httptest.Server
}

// GenerateResourceName creates a unique resource name for testing
func GenerateResourceName() string {
	rand.Seed(uint64(time.Now().UnixNano()))
	suffix := make([]byte, TestResourceNameLength)
	for i := range suffix {
		suffix[i] = resourceNameChars[rand.Intn(len(resourceNameChars))]
	}
	return fmt.Sprintf("%s-%s", TestResourcePrefix, string(suffix))
}

// NewTestEnv starts a mock provider on a random port. The operation
// tick is kept short so operations reach DONE quickly in tests.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	srv, err := server.New(server.Config{
		Environment:   "test",
		OperationTick: server.DefaultOperationTick,
		Log:           logger.Config{LogLevel: "error"},
	})
	if err != nil {
		t.Fatalf("failed to create mock provider: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())

	scope, err := compute.NewScope(compute.ScopeConfig{
		Endpoint:     ts.URL,
		Project:      "test-project",
		Zone:         "zone-a",
		PollInterval: 25 * time.Millisecond,
		Timeout:      5 * time.Second,
	})
	if err != nil {
		ts.Close()
		t.Fatalf("failed to create scope: %v", err)
	}

	return &TestEnv{
		Scope:  scope,
		Store:  srv.Store(),
		URL:    ts.URL,
		server: ts,
	}
}

func (e *TestEnv) Cleanup() {
	if e.server != nil {
		e.server.Close()
	}
}
