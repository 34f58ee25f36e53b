package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/client"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	Client *client.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.MeetLabAddr == "" {
		s.T().Skip("MEET_LAB_ADDR is not set")
	}
	s.Client = client.New(logs.GetLoggerFromLevel(slog.LevelDebug), s.Config.MeetLabAddr, nil)
}

// Step runs fn under a colorized header with a bounded context.
func (s *BaseSuite) Step(name string, fn func(ctx context.Context)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	start := time.Now()
	fn(ctx)
	s.T().Logf("%s done in %v", name, time.Since(start))
}

// WithHealth provides a gRPC health client of the running service.
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client grpc_health_v1.HealthClient)) {
	if s.Config.MeetLabGrpcAddr == "" {
		s.T().Skip("MEET_LAB_GRPC_ADDR is not set")
	}
	conn, err := grpc.NewClient(s.Config.MeetLabGrpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.MeetLabGrpcAddr)
	defer conn.Close()

	s.Step(name, func(ctx context.Context) {
		fn(ctx, grpc_health_v1.NewHealthClient(conn))
	})
}
