// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package neg

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratastor/cumulus/config"
	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/compute/endpointgroup"
	"github.com/stratastor/logger"
	"gopkg.in/yaml.v2"
)

func NewNegCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neg",
		Short: "Manage network endpoint groups",
		Long:  `Create, inspect or delete network endpoint groups and manage their endpoint membership`,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newAttachCmd())
	cmd.AddCommand(newDetachCmd())
	cmd.AddCommand(newEndpointsCmd())

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

// parseEndpoints turns "instance:ip:port" specs into endpoint structs.
// Each field may be empty, e.g. ":10.0.0.4:8080" or "vm-1::".
func parseEndpoints(specs []string) ([]endpointgroup.Endpoint, error) {
	endpoints := make([]endpointgroup.Endpoint, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid endpoint %q, expected instance:ip:port", spec)
		}

		ep := endpointgroup.Endpoint{
			Instance:  parts[0],
			IPAddress: parts[1],
		}
		if parts[2] != "" {
			port, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid port in endpoint %q: %v", spec, err)
			}
			ep.Port = port
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

func newCreateCmd() *cobra.Command {
	var (
		network     string
		subnetwork  string
		defaultPort int
		description string
		wait        bool
		waitTimeout int
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a network endpoint group",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := endpointgroup.New(scope, args[0]).Create(ctx, endpointgroup.Config{
				Network:     network,
				Subnetwork:  subnetwork,
				DefaultPort: defaultPort,
				Description: description,
			})
			if err != nil {
				l.Error("Failed to create endpoint group", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Endpoint group creation failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Endpoint group created: %s\n", args[0])
		},
	}

	cmd.Flags().StringVar(&network, "network", "", "Network the group belongs to (required)")
	cmd.Flags().StringVar(&subnetwork, "subnetwork", "", "Subnetwork the group belongs to")
	cmd.Flags().IntVar(&defaultPort, "default-port", 0, "Default port for endpoints without one")
	cmd.Flags().StringVar(&description, "description", "", "Endpoint group description")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show an endpoint group's metadata",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			meta, err := endpointgroup.New(scope, args[0]).Get(ctx)
			if err != nil {
				l.Error("Failed to get endpoint group", "name", args[0], "error", err)
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
		Short: "List endpoint groups in the configured zone",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			items, err := scope.List(ctx, constants.CollectionEndpointGroups)
			if err != nil {
				l.Error("Failed to list endpoint groups", "error", err)
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
		Short: "Delete a network endpoint group",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := endpointgroup.New(scope, args[0]).Delete(ctx)
			if err != nil {
				l.Error("Failed to delete endpoint group", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Endpoint group deletion failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Endpoint group deleted: %s\n", args[0])
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newAttachCmd() *cobra.Command {
	var (
		endpointSpecs []string
		wait          bool
		waitTimeout   int
	)

	cmd := &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach endpoints to a group",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			endpoints, err := parseEndpoints(endpointSpecs)
			if err != nil {
				l.Error("Invalid endpoint specification", "error", err)
				os.Exit(1)
			}

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := endpointgroup.New(scope, args[0]).AttachEndpoints(ctx, endpoints)
			if err != nil {
				l.Error("Failed to attach endpoints", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Endpoint attach failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Attached %d endpoint(s) to %s\n", len(endpoints), args[0])
		},
	}

	cmd.Flags().StringSliceVar(&endpointSpecs, "endpoint", []string{}, "Endpoint as instance:ip:port (can be specified multiple times)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newDetachCmd() *cobra.Command {
	var (
		endpointSpecs []string
		wait          bool
		waitTimeout   int
	)

	cmd := &cobra.Command{
		Use:   "detach <name>",
		Short: "Detach endpoints from a group",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			endpoints, err := parseEndpoints(endpointSpecs)
			if err != nil {
				l.Error("Invalid endpoint specification", "error", err)
				os.Exit(1)
			}

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			op, err := endpointgroup.New(scope, args[0]).DetachEndpoints(ctx, endpoints)
			if err != nil {
				l.Error("Failed to detach endpoints", "name", args[0], "error", err)
				os.Exit(1)
			}

			if err := waitIfRequested(ctx, op, wait, waitTimeout); err != nil {
				l.Error("Endpoint detach failed", "name", args[0], "error", err)
				os.Exit(1)
			}
			fmt.Printf("Detached %d endpoint(s) from %s\n", len(endpoints), args[0])
		},
	}

	cmd.Flags().StringSliceVar(&endpointSpecs, "endpoint", []string{}, "Endpoint as instance:ip:port (can be specified multiple times)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the operation completes")
	cmd.Flags().IntVar(&waitTimeout, "wait-timeout", 0, "Wait timeout in seconds (0 = no timeout)")

	return cmd
}

func newEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints <name>",
		Short: "List a group's endpoint membership",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			l := newLogger("neg")

			scope, err := newScope()
			if err != nil {
				l.Error("Failed to create scope", "error", err)
				os.Exit(1)
			}

			endpoints, err := endpointgroup.New(scope, args[0]).ListEndpoints(ctx)
			if err != nil {
				l.Error("Failed to list endpoints", "name", args[0], "error", err)
				os.Exit(1)
			}

			for _, ep := range endpoints {
				fmt.Printf("%s:%s:%d\n", ep.Instance, ep.IPAddress, ep.Port)
			}
		},
	}
}
