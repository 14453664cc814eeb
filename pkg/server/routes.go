// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/stratastor/cumulus/internal/constants"
)

// registerComputeRoutes wires the zone-scoped provider surface. The
// mock provider speaks the collections the wrappers use; the generic
// client handle itself is collection-agnostic.
func registerComputeRoutes(engine *gin.Engine, store *Store) {
	zone := engine.Group(constants.APIBase + "/projects/:project/zones/:zone")
	{
		NewResourceHandler(store, constants.CollectionAutoscalers).RegisterRoutes(zone)
		NewResourceHandler(store, constants.CollectionInstances).RegisterRoutes(zone)
		NewEndpointGroupHandler(store).RegisterRoutes(zone)
		NewOperationHandler(store).RegisterRoutes(zone)
	}
}
