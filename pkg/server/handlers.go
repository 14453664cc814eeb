// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/errors"
)

// ResourceHandler serves the uniform CRUD surface of one collection.
//
//	GET    /<collection>            List resources
//	POST   /<collection>            Create resource, returns operation
//	GET    /<collection>/:name      Resource metadata
//	PATCH  /<collection>/:name      Partial update, returns operation
//	DELETE /<collection>/:name      Delete resource, returns operation
type ResourceHandler struct {
	store      *Store
	collection string
}

func NewResourceHandler(store *Store, collection string) *ResourceHandler {
	return &ResourceHandler{store: store, collection: collection}
}

func (h *ResourceHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/" + h.collection)
	{
		group.GET("", h.list)
		group.POST("", h.create)
		group.GET("/:name", h.get)
		group.PATCH("/:name", h.patch)
		group.DELETE("/:name", h.delete)
	}
}

func (h *ResourceHandler) selfLink(c *gin.Context, name string) string {
	return fmt.Sprintf("%s/projects/%s/zones/%s/%s/%s",
		constants.APIBase, c.Param("project"), c.Param("zone"), h.collection, name)
}

func (h *ResourceHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.store.listResources(h.collection)})
}

func (h *ResourceHandler) create(c *gin.Context) {
	var meta map[string]interface{}
	if err := c.ShouldBindJSON(&meta); err != nil {
		abortWithError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	name, _ := meta["name"].(string)
	if name == "" {
		abortWithError(c, errors.New(errors.ResourceInvalidName, "name is required"))
		return
	}

	meta["zone"] = c.Param("zone")
	if !h.store.putResource(h.collection, name, meta) {
		abortWithError(c, errors.New(errors.ResourceConflict, h.selfLink(c, name)))
		return
	}

	c.JSON(http.StatusAccepted, h.store.newOperation("insert", h.selfLink(c, name)))
}

func (h *ResourceHandler) get(c *gin.Context) {
	name := c.Param("name")
	meta, ok := h.store.getResource(h.collection, name)
	if !ok {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *ResourceHandler) patch(c *gin.Context) {
	name := c.Param("name")

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	if !h.store.patchResource(h.collection, name, patch) {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}

	c.JSON(http.StatusAccepted, h.store.newOperation("update", h.selfLink(c, name)))
}

func (h *ResourceHandler) delete(c *gin.Context) {
	name := c.Param("name")
	if !h.store.deleteResource(h.collection, name) {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}
	c.JSON(http.StatusAccepted, h.store.newOperation("delete", h.selfLink(c, name)))
}

// EndpointGroupHandler adds the network-endpoint-group verbs on top of
// the uniform surface.
//
//	POST /networkEndpointGroups/:name/attachEndpoints
//	POST /networkEndpointGroups/:name/detachEndpoints
//	GET  /networkEndpointGroups/:name/listEndpoints
type EndpointGroupHandler struct {
	*ResourceHandler
}

func NewEndpointGroupHandler(store *Store) *EndpointGroupHandler {
	return &EndpointGroupHandler{
		ResourceHandler: NewResourceHandler(store, constants.CollectionEndpointGroups),
	}
}

func (h *EndpointGroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.ResourceHandler.RegisterRoutes(router)

	group := router.Group("/" + h.collection)
	{
		group.POST("/:name/attachEndpoints", h.attachEndpoints)
		group.POST("/:name/detachEndpoints", h.detachEndpoints)
		group.GET("/:name/listEndpoints", h.listEndpoints)
	}
}

type endpointsRequest struct {
	NetworkEndpoints []map[string]interface{} `json:"networkEndpoints" binding:"required"`
}

func (h *EndpointGroupHandler) attachEndpoints(c *gin.Context) {
	name := c.Param("name")

	var req endpointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	meta, ok := h.store.getResource(h.collection, name)
	if !ok {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}

	endpoints := endpointList(meta)
	for _, ep := range req.NetworkEndpoints {
		endpoints = append(endpoints, ep)
	}
	h.store.patchResource(h.collection, name, map[string]interface{}{
		"networkEndpoints": endpoints,
	})

	c.JSON(http.StatusAccepted, h.store.newOperation("attachNetworkEndpoints", h.selfLink(c, name)))
}

func (h *EndpointGroupHandler) detachEndpoints(c *gin.Context) {
	name := c.Param("name")

	var req endpointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errors.New(errors.ServerRequestValidation, err.Error()))
		return
	}

	meta, ok := h.store.getResource(h.collection, name)
	if !ok {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}

	var kept []interface{}
	for _, ep := range endpointList(meta) {
		matched := false
		for _, rm := range req.NetworkEndpoints {
			if reflect.DeepEqual(ep, map[string]interface{}(rm)) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, ep)
		}
	}
	if kept == nil {
		kept = []interface{}{}
	}
	h.store.patchResource(h.collection, name, map[string]interface{}{
		"networkEndpoints": kept,
	})

	c.JSON(http.StatusAccepted, h.store.newOperation("detachNetworkEndpoints", h.selfLink(c, name)))
}

func (h *EndpointGroupHandler) listEndpoints(c *gin.Context) {
	name := c.Param("name")

	meta, ok := h.store.getResource(h.collection, name)
	if !ok {
		abortWithError(c, errors.New(errors.ResourceNotFound, h.selfLink(c, name)))
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": endpointList(meta)})
}

func endpointList(meta map[string]interface{}) []interface{} {
	eps, _ := meta["networkEndpoints"].([]interface{})
	return eps
}

// OperationHandler serves operation status polls.
//
//	GET /operations/:name
type OperationHandler struct {
	store *Store
}

func NewOperationHandler(store *Store) *OperationHandler {
	return &OperationHandler{store: store}
}

func (h *OperationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/"+constants.CollectionOperations+"/:name", h.get)
}

func (h *OperationHandler) get(c *gin.Context) {
	name := c.Param("name")
	op, ok := h.store.getOperation(name)
	if !ok {
		abortWithError(c, errors.New(errors.OperationNotFound, name))
		return
	}
	c.JSON(http.StatusOK, op)
}

func abortWithError(c *gin.Context, err *errors.CumulusError) {
	c.Error(err)
	c.AbortWithStatusJSON(err.HTTPStatus, err)
}
