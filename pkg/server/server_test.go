// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stratastor/cumulus/pkg/server"
	"github.com/stratastor/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePath = "/compute/v1/projects/p1/zones/z1"

func newTestServer(t *testing.T) (*httptest.Server, *server.Store) {
	t.Helper()

	srv, err := server.New(server.Config{
		Environment:   "test",
		OperationTick: 20 * time.Millisecond,
		Log:           logger.Config{LogLevel: "error"},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, srv.Store()
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateReturnsOperation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
		"name":        "vm-1",
		"machineType": "small",
	})

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Contains(t, body["name"], "operation-")
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, "insert", body["operationType"])
	assert.Equal(t, basePath+"/instances/vm-1", body["targetLink"])
}

func TestCreateValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("missing name", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
			"machineType": "small",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "RESOURCE", body["domain"])
	})

	t.Run("duplicate name", func(t *testing.T) {
		payload := map[string]interface{}{"name": "vm-dup"}
		resp, _ := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", payload)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		resp, body := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", payload)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "RESOURCE", body["domain"])
	})
}

func TestGetResource(t *testing.T) {
	ts, _ := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
		"name":        "vm-1",
		"machineType": "small",
	})

	resp, body := doJSON(t, http.MethodGet, ts.URL+basePath+"/instances/vm-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vm-1", body["name"])
	assert.Equal(t, "small", body["machineType"])
	// The zone is stamped onto stored resources
	assert.Equal(t, "z1", body["zone"])
}

func TestGetResourceNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+basePath+"/instances/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RESOURCE", body["domain"])
	assert.NotNil(t, body["code"])
}

func TestOperationProgression(t *testing.T) {
	ts, _ := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
		"name": "vm-1",
	})
	opName := created["name"].(string)
	opURL := fmt.Sprintf("%s%s/operations/%s", ts.URL, basePath, opName)

	// Wait out both non-terminal ticks
	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, opURL, nil)
		return body["status"] == "DONE"
	}, time.Second, 10*time.Millisecond)

	_, body := doJSON(t, http.MethodGet, opURL, nil)
	assert.Equal(t, "DONE", body["status"])
	assert.Nil(t, body["error"])
}

func TestOperationHold(t *testing.T) {
	ts, store := newTestServer(t)

	store.SetHold(true)
	_, created := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
		"name": "vm-1",
	})
	opURL := fmt.Sprintf("%s%s/operations/%s", ts.URL, basePath, created["name"])

	time.Sleep(60 * time.Millisecond)
	_, body := doJSON(t, http.MethodGet, opURL, nil)
	assert.Equal(t, "PENDING", body["status"])
}

func TestOperationInjectedFailure(t *testing.T) {
	ts, store := newTestServer(t)

	store.FailNextOperation("QUOTA_EXCEEDED", "replicas", "too many replicas")
	_, created := doJSON(t, http.MethodPost, ts.URL+basePath+"/instances", map[string]interface{}{
		"name": "vm-1",
	})
	opURL := fmt.Sprintf("%s%s/operations/%s", ts.URL, basePath, created["name"])

	require.Eventually(t, func() bool {
		_, body := doJSON(t, http.MethodGet, opURL, nil)
		return body["status"] == "DONE"
	}, time.Second, 10*time.Millisecond)

	_, body := doJSON(t, http.MethodGet, opURL, nil)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	errList, ok := errObj["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errList, 1)

	first := errList[0].(map[string]interface{})
	assert.Equal(t, "QUOTA_EXCEEDED", first["code"])
	assert.Equal(t, "replicas", first["location"])
}

func TestOperationNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+basePath+"/operations/operation-nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "OPERATION", body["domain"])
}

func TestEndpointGroupVerbs(t *testing.T) {
	ts, _ := newTestServer(t)
	negURL := ts.URL + basePath + "/networkEndpointGroups"

	resp, _ := doJSON(t, http.MethodPost, negURL, map[string]interface{}{
		"name":    "neg-1",
		"network": "net-0",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, negURL+"/neg-1/attachEndpoints", map[string]interface{}{
		"networkEndpoints": []map[string]interface{}{
			{"instance": "vm-1", "ipAddress": "10.0.0.4", "port": 8080},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "attachNetworkEndpoints", body["operationType"])

	resp, body = doJSON(t, http.MethodGet, negURL+"/neg-1/listEndpoints", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]interface{})
	require.Len(t, items, 1)

	resp, _ = doJSON(t, http.MethodPost, negURL+"/neg-1/detachEndpoints", map[string]interface{}{
		"networkEndpoints": []map[string]interface{}{
			{"instance": "vm-1", "ipAddress": "10.0.0.4", "port": 8080},
		},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	_, body = doJSON(t, http.MethodGet, negURL+"/neg-1/listEndpoints", nil)
	assert.Empty(t, body["items"])
}

func TestEndpointGroupVerbValidation(t *testing.T) {
	ts, _ := newTestServer(t)
	negURL := ts.URL + basePath + "/networkEndpointGroups"

	doJSON(t, http.MethodPost, negURL, map[string]interface{}{"name": "neg-1"})

	// networkEndpoints is required
	resp, body := doJSON(t, http.MethodPost, negURL+"/neg-1/attachEndpoints", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SERVER", body["domain"])

	resp, _ = doJSON(t, http.MethodPost, negURL+"/neg-2/attachEndpoints", map[string]interface{}{
		"networkEndpoints": []map[string]interface{}{{"instance": "vm-1"}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
