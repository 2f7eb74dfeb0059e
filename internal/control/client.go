package control

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.klb.dev/clipfmt/internal/ipc"
	"go.klb.dev/clipfmt/internal/message"
	"go.klb.dev/clipfmt/internal/wire"
)

// Client talks to a running watcher.
type Client struct {
	// Dial opens a connection to the control socket.
	Dial func(ctx context.Context) (net.Conn, error)
	// Source names the caller in the watcher's logs.
	Source string
}

// NewClient returns a Client for the default control socket.
func NewClient(source string) *Client {
	return &Client{Dial: ipc.Dial, Source: source}
}

// Do sends one request and returns the reply. ERROR replies come back as
// errors.
func (c *Client) Do(ctx context.Context, t message.Type) (*message.Message, error) {
	conn, err := c.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to watcher: %w", err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	wc := wire.New(conn)
	if err := wc.WriteMsg(&message.Message{Type: t, Source: c.Source}); err != nil {
		return nil, fmt.Errorf("send %s: %w", t, err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if resp.Type == message.TypeError {
		return nil, errors.New(resp.Error)
	}
	return resp, nil
}

// Status fetches the watcher status.
func (c *Client) Status(ctx context.Context) (*message.Status, error) {
	resp, err := c.Do(ctx, message.TypeStatus)
	if err != nil {
		return nil, err
	}
	if resp.Status == nil {
		return nil, fmt.Errorf("unexpected %s reply to STATUS", resp.Type)
	}
	return resp.Status, nil
}

// Health runs a grpc.health.v1 check against the watcher.
func (c *Client) Health(ctx context.Context) (*healthpb.HealthCheckResponse, error) {
	cc, err := grpc.NewClient("passthrough:///clipfmt",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return c.Dial(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}
	defer cc.Close()
	return healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
}
