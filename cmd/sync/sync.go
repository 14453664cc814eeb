// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/autosync"
	"github.com/stratastor/logger"
)

func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage metadata sync policies",
		Long:  `Register, remove or list policies that refresh resource metadata on a schedule`,
	}

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func newManager() (*autosync.Manager, error) {
	cfg := config.GetConfig()
	timeout, err := time.ParseDuration(cfg.Provider.RequestTimeout)
	if err != nil {
		timeout = 0
	}

	scope, err := compute.NewScope(compute.ScopeConfig{
		Endpoint:      cfg.Provider.Endpoint,
		Project:       cfg.Provider.Project,
		Zone:          cfg.Provider.Zone,
		Token:         cfg.Provider.Token,
		PollInterval:  time.Duration(cfg.Provider.PollIntervalMs) * time.Millisecond,
		Timeout:       timeout,
		AllowInsecure: cfg.Provider.AllowInsecure,
	})
	if err != nil {
		return nil, err
	}

	return autosync.GetManager(scope, config.GetStateDir())
}

func newLogger(tag string) logger.Logger {
	cfg := config.GetConfig()
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return l
}

func newAddCmd() *cobra.Command {
	var (
		collection string
		interval   string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a sync policy for a resource",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			l := newLogger("sync")

			manager, err := newManager()
			if err != nil {
				l.Error("Failed to create sync manager", "error", err)
				os.Exit(1)
			}

			id, err := manager.AddPolicy(autosync.Policy{
				Collection: collection,
				Name:       args[0],
				Interval:   interval,
			})
			if err != nil {
				l.Error("Failed to add sync policy", "name", args[0], "error", err)
				os.Exit(1)
			}

			fmt.Printf("Sync policy registered: %s\n", id)
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Resource collection (required)")
	cmd.Flags().StringVar(&interval, "interval", "30s", "Refresh interval (Go duration)")

	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <policy-id>",
		Short: "Remove a sync policy",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			l := newLogger("sync")

			manager, err := newManager()
			if err != nil {
				l.Error("Failed to create sync manager", "error", err)
				os.Exit(1)
			}

			if err := manager.RemovePolicy(args[0]); err != nil {
				l.Error("Failed to remove sync policy", "id", args[0], "error", err)
				os.Exit(1)
			}

			fmt.Printf("Sync policy removed: %s\n", args[0])
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sync policies",
		Run: func(cmd *cobra.Command, args []string) {
			l := newLogger("sync")

			manager, err := newManager()
			if err != nil {
				l.Error("Failed to create sync manager", "error", err)
				os.Exit(1)
			}

			for _, policy := range manager.ListPolicies() {
				fmt.Printf("%s\t%s/%s\t%s\n", policy.ID, policy.Collection, policy.Name, policy.Interval)
			}
		},
	}
}
