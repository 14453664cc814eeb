// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package autoscaler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/autoscaler"
	"github.com/stratastor/logger"
	"gopkg.in/yaml.v2"
)

func NewAutoscalerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoscaler",
		Short: "Manage provider-side autoscalers",
		Long:  `Create, inspect, update or delete autoscalers in the configured project and zone`,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newSetPolicyCmd())

	return cmd
}

func newScope() (*compute.Scope, error) {
	cfg := config.GetConfig()
	timeout, err := time.ParseDuration(cfg.Provider.RequestTimeout)
	if err != nil {
		timeout = 0
	}

	return compute.NewScope(compute.ScopeConfig{
		Endpoint:      cfg.Provider.Endpoint,
		Project:       cfg.Provider.Project,
		Zone:          cfg.Provider.Zone,
		Token:         cfg.Provider.Token,
		PollInterval:  time.Duration(cfg.Provider.PollIntervalMs) * time.Millisecond,
		Timeout:       timeout,
		AllowInsecure: cfg.Provider.AllowInsecure,
	})
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

// waitIfRequested blocks on the operation when --wait was passed.
func waitIfRequested(ctx context.Context, op *compute.Operation, wait bool, waitTimeout int) error {
	if !wait {
		fmt.Printf("Operation: %s (status: %s)\n", op.Name(), op.Status())
		return nil
	}

	opts := compute.WaitOptions{}
	if waitTimeout > 0 {
		opts.Timeout = time.Duration(waitTimeout) * time.Second
	}
	if err := op.Wait(ctx, opts); err != nil {
		return err
	}
	fmt.Printf("Operation %s completed\n", op.Name())
	return nil
}

func newCreateCmd() *cobra.Command {
	var (
		target      string
		description string
		cooldown    int
		cpu         float64
		loadBalance float64
		minReplicas int
		maxReplicas int
		wait        bool
		waitTimeout int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an autoscaler",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("autoscaler")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			as := autoscaler.New(scope, args[0])
			op, err := as.Create(ctx, autoscaler.Config{
				Description: description,
				Target:      target,
				Policy: autoscaler.Policy{
					CoolDown:    cooldown,
					CPU:         cpu,
					LoadBalance: loadBalance,
					MinReplicas: minReplicas,
					MaxReplicas: maxReplicas,
				},
			})
			if err != nil {
				l.Error("Failed to create autoscaler", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Autoscaler creation failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Autoscaler created: %s\n", args[0])
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Instance group the autoscaler manages (required)")
	cmd.Flags().StringVar(&description, "description", "", "Autoscaler description")
	cmd.Flags().IntVar(&cooldown, "cooldown", 0, "Cool-down period in seconds")
	cmd.Flags().Float64Var(&cpu, "cpu", 0, "Target CPU utilization (0..1)")
	cmd.Flags().Float64Var(&loadBalance, "load-balance", 0, "Target load balancer utilization (0..1)")
	cmd.Flags().IntVar(&minReplicas, "min", 0, "Minimum replica count")
	cmd.Flags().IntVar(&maxReplicas, "max", 0, "Maximum replica count")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show an autoscaler's metadata",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("autoscaler")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			meta, err := autoscaler.New(scope, args[0]).Get(ctx)
			if err != nil {
				l.Error("Failed to get autoscaler", "name", args[0], "error", err)
				os.Exit(1)
			}

			ymlData, err := yaml.Marshal(meta)
			if err != nil {
				l.Error("Failed to marshal metadata", "error", err)
				os.Exit(1)
			}
			fmt.Print(string(ymlData))
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List autoscalers in the configured zone",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("autoscaler")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			items, err := scope.List(ctx, constants.CollectionAutoscalers)
			if err != nil {
				l.Error("Failed to list autoscalers", "error", err)
				os.Exit(1)
			}

			for _, item := range items {
				fmt.Println(item["name"])
			}
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var (
		wait        bool
		waitTimeout int
	)

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an autoscaler",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("autoscaler")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := autoscaler.New(scope, args[0]).Delete(ctx)
			if err != nil {
				l.Error("Failed to delete autoscaler", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Autoscaler deletion failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Autoscaler deleted: %s\n", args[0])
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newSetPolicyCmd() *cobra.Command {
	var (
		cooldown    int
		cpu         float64
		loadBalance float64
		minReplicas int
		maxReplicas int
		wait        bool
		waitTimeout int
	)

	cmd := &cobra.Command{
		Use:   "set-policy <name>",
		Short: "Replace an autoscaler's scaling policy",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("autoscaler")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := autoscaler.New(scope, args[0]).SetPolicy(ctx, autoscaler.Policy{
				CoolDown:    cooldown,
				CPU:         cpu,
				LoadBalance: loadBalance,
				MinReplicas: minReplicas,
				MaxReplicas: maxReplicas,
			})
			if err != nil {
				l.Error("Failed to update policy", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Policy update failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Policy updated: %s\n", args[0])
		},
	}

	cmd.Flags().IntVar(&cooldown, "cooldown", 0, "Cool-down period in seconds")
	cmd.Flags().Float64Var(&cpu, "cpu", 0, "Target CPU utilization (0..1)")
	cmd.Flags().Float64Var(&loadBalance, "load-balance", 0, "Target load balancer utilization (0..1)")
	cmd.Flags().IntVar(&minReplicas, "min", 0, "Minimum replica count")
	cmd.Flags().IntVar(&maxReplicas, "max", 0, "Maximum replica count")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}
