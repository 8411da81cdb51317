package gatewire

import (
	"context"
	"math"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

func startGate(t *testing.T, cfg ase.Config) *GateClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterGateServer(server, NewService(cfg, envelope.DefaultScalar()))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &GateClient{conn: conn, invoke: conn.Invoke}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEnforceOverWirePassThrough(t *testing.T) {
	client := startGate(t, ase.Config{Mode: ase.ModeReject})

	res, err := client.Enforce(testContext(t), 0.0, 0.2)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if res.Effective != 0.2 || res.Outcome != "pass" {
		t.Fatalf("expected pass 0.2, got %+v", res)
	}
}

func TestEnforceOverWireScales(t *testing.T) {
	cfg := ase.Config{Mode: ase.ModeScale, MaxScaleAttempts: 16, ScaleFactor: 0.5}
	client := startGate(t, cfg)

	res, err := client.Enforce(testContext(t), 0.9, 0.5)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if res.Effective != 0.0625 || res.Outcome != "adjusted" {
		t.Fatalf("expected adjusted 0.0625, got %+v", res)
	}
}

func TestEnforceOverWireNeutralizesNaN(t *testing.T) {
	cfg := ase.Config{Mode: ase.ModeScale, MaxScaleAttempts: 16, ScaleFactor: 0.5}
	client := startGate(t, cfg)

	res, err := client.Enforce(testContext(t), 0.9, math.NaN())
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if res.Effective != 0.0 || res.Outcome != "neutral" {
		t.Fatalf("expected neutral 0.0, got %+v", res)
	}
}

func TestEnforceRejectsMissingField(t *testing.T) {
	client := startGate(t, ase.Config{Mode: ase.ModeReject})

	req, err := structpb.NewStruct(map[string]interface{}{"state": 0.1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	resp := new(structpb.Struct)
	err = client.invoke(testContext(t), enforceFullMethod, req, resp)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestServiceRejectsNonNumberField(t *testing.T) {
	svc := NewService(ase.Config{Mode: ase.ModeReject}, envelope.DefaultScalar())

	req, err := structpb.NewStruct(map[string]interface{}{
		"state":    "almost one",
		"proposed": 0.5,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = svc.Enforce(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestClientWithInjectedInvoker(t *testing.T) {
	svc := NewService(ase.Config{Mode: ase.ModeProject}, envelope.DefaultScalar())

	client := NewGateClientWithInvoker(func(ctx context.Context, method string, args, reply interface{}, opts ...grpc.CallOption) error {
		resp, err := svc.Enforce(ctx, args.(*structpb.Struct))
		if err != nil {
			return err
		}
		reply.(*structpb.Struct).Fields = resp.GetFields()
		return nil
	})

	res, err := client.Enforce(context.Background(), 0.9, 0.5)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	// clamp(0.9+0.5) = 1.0; effective step 0.1.
	if math.Abs(res.Effective-0.1) > 1e-15 || res.Outcome != "adjusted" {
		t.Fatalf("expected adjusted 0.1, got %+v", res)
	}
}
