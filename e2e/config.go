package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// MEET_LAB_ADDR is the base URL of a running meeting service, the suites are skipped when empty
	MeetLabAddr string `envconfig:"MEET_LAB_ADDR"`
	// MEET_LAB_GRPC_ADDR is the address of its gRPC health endpoint
	MeetLabGrpcAddr string `envconfig:"MEET_LAB_GRPC_ADDR"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
