// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/stratastor/cumulus/cmd/autoscaler"
	"github.com/stratastor/cumulus/cmd/config"
	"github.com/stratastor/cumulus/cmd/health"
	"github.com/stratastor/cumulus/cmd/neg"
	"github.com/stratastor/cumulus/cmd/serve"
	"github.com/stratastor/cumulus/cmd/status"
	"github.com/stratastor/cumulus/cmd/sync"
	"github.com/stratastor/cumulus/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cumulus",
		Short: "Cumulus: StrataCloud compute client",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(config.NewConfigCmd())
	rootCmd.AddCommand(autoscaler.NewAutoscalerCmd())
	rootCmd.AddCommand(neg.NewNegCmd())
	rootCmd.AddCommand(sync.NewSyncCmd())

	return rootCmd
}
