package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

func newHealthCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Run a gRPC health check against the watcher",
		Long: `Performs a grpc.health.v1 check on the control socket. Exits non-zero
unless the watcher reports SERVING (it reports NOT_SERVING while paused).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			resp, err := newClient().Health(ctx)
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			if jsonOut {
				b, err := protojson.Marshal(resp)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus())
			}
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("watcher is %s", resp.GetStatus())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output the response as JSON")
	return cmd
}
