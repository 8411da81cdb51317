// Package gatewire exposes a scalar-envelope enforcement engine over gRPC
// for hosts that live out of process. Messages are schema-less
// structpb.Struct values over the standard proto codec with a hand-written
// service descriptor, so no protoc step is part of the build.
package gatewire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region descriptor

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ase.v1.Gate"

const enforceFullMethod = "/ase.v1.Gate/Enforce"

// GateServer is the server-side API of the gate service.
type GateServer interface {
	Enforce(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterGateServer registers a GateServer implementation with a registrar.
func RegisterGateServer(s grpc.ServiceRegistrar, srv GateServer) {
	s.RegisterService(&gateServiceDesc, srv)
}

func enforceHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServer).Enforce(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: enforceFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GateServer).Enforce(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var gateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GateServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Enforce", Handler: enforceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ase/v1/gate",
}

// #endregion descriptor

// #region service

// Service implements GateServer over a scalar envelope engine.
type Service struct {
	engine  *ase.Engine[float64, float64]
	neutral float64
}

// NewService builds the gate service from an engine configuration and a
// scalar envelope.
func NewService(cfg ase.Config, env envelope.Scalar) *Service {
	return &Service{
		engine:  ase.NewEngine(cfg, env.Hooks()),
		neutral: env.NeutralStep(),
	}
}

// Enforce gates one proposed transition. The request carries "state" and
// "proposed" numbers; the response carries "effective" and "outcome".
func (s *Service) Enforce(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "enforce request is required")
	}
	state, err := numberField(req, "state")
	if err != nil {
		return nil, err
	}
	proposed, err := numberField(req, "proposed")
	if err != nil {
		return nil, err
	}

	effective := s.engine.Enforce(state, proposed)

	outcome := "adjusted"
	switch effective {
	case proposed:
		outcome = "pass"
	case s.neutral:
		outcome = "neutral"
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"effective": effective,
		"outcome":   outcome,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

func numberField(req *structpb.Struct, name string) (float64, error) {
	val, ok := req.GetFields()[name]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q is required", name)
	}
	if _, isNum := val.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a number", name)
	}
	return val.GetNumberValue(), nil
}

// #endregion service
