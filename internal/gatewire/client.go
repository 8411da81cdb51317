package gatewire

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region types

// EnforceResult holds the response of an Enforce RPC call.
type EnforceResult struct {
	Effective float64
	Outcome   string
}

// Invoker is the unary call surface the client needs; *grpc.ClientConn
// satisfies it via Invoke.
type Invoker func(ctx context.Context, method string, args, reply interface{}, opts ...grpc.CallOption) error

// #endregion types

// #region client-struct

// GateClient wraps the gRPC connection to a gate sidecar.
type GateClient struct {
	conn   *grpc.ClientConn
	invoke Invoker
}

// #endregion client-struct

// #region constructor

// NewGateClient connects to a gate server.
func NewGateClient(addr string) (*GateClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GateClient{conn: conn, invoke: conn.Invoke}, nil
}

// NewGateClientWithInvoker creates a GateClient with an injected unary
// invoker. Used for testing without a real network connection.
func NewGateClientWithInvoker(invoke Invoker) *GateClient {
	return &GateClient{invoke: invoke}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection.
func (c *GateClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region enforce

// Enforce asks the sidecar to gate one proposed transition.
func (c *GateClient) Enforce(ctx context.Context, state, proposed float64) (EnforceResult, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"state":    state,
		"proposed": proposed,
	})
	if err != nil {
		return EnforceResult{}, fmt.Errorf("encode request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.invoke(ctx, enforceFullMethod, req, resp); err != nil {
		return EnforceResult{}, fmt.Errorf("enforce rpc: %w", err)
	}

	fields := resp.GetFields()
	return EnforceResult{
		Effective: fields["effective"].GetNumberValue(),
		Outcome:   fields["outcome"].GetStringValue(),
	}, nil
}

// #endregion enforce
