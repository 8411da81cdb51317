package main

import (
	"log"
	"net"

	"github.com/caarlos0/env/v11"
	"google.golang.org/grpc"

	"github.com/MaryanBog/ASE-SDK/internal/envelope"
	"github.com/MaryanBog/ASE-SDK/internal/gatewire"
	"github.com/MaryanBog/ASE-SDK/pkg/ase"
)

// #region config

type config struct {
	Addr        string  `env:"GATE_ADDR" envDefault:":50051"`
	Mode        string  `env:"GATE_MODE" envDefault:"scale"`
	Limit       float64 `env:"GATE_LIMIT" envDefault:"1.0"`
	MaxAttempts int     `env:"GATE_MAX_SCALE_ATTEMPTS" envDefault:"16"`
	ScaleFactor float64 `env:"GATE_SCALE_FACTOR" envDefault:"0.5"`
}

// #endregion config

// #region main

// gated serves the scalar gate over gRPC for hosts that live out of process.
func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	mode, ok := ase.ParseMode(cfg.Mode)
	if !ok {
		log.Fatalf("unknown GATE_MODE %q", cfg.Mode)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Addr, err)
	}

	service := gatewire.NewService(ase.Config{
		Mode:             mode,
		MaxScaleAttempts: cfg.MaxAttempts,
		ScaleFactor:      cfg.ScaleFactor,
	}, envelope.Scalar{Limit: cfg.Limit})

	server := grpc.NewServer()
	gatewire.RegisterGateServer(server, service)

	log.Printf("gate listening on %s (mode=%s limit=%g attempts=%d factor=%g)",
		cfg.Addr, mode, cfg.Limit, cfg.MaxAttempts, cfg.ScaleFactor)
	if err := server.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main
