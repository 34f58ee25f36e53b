package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	GrpcPort int    `env:"GRPC_PORT,default=9090"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	// Empty paths keep the store in memory
	BadgerFilepath string `env:"BADGER_FILEPATH"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081"`

	BufferSize           int           `env:"BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=1024"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	IndexBatchSize       int           `env:"INDEX_BATCH_SIZE,default=100"`
	IndexBufferTimeout   time.Duration `env:"INDEX_BUFFER_TIMEOUT,default=500ms"`

	MeetingIdleTimeout time.Duration `env:"MEETING_IDLE_TIMEOUT,default=2h"`
	ReaperInterval     time.Duration `env:"REAPER_INTERVAL,default=1m"`
	StatsInterval      time.Duration `env:"STATS_INTERVAL,default=30s"`

	SystemCaptions    bool   `env:"SYSTEM_CAPTIONS,default=false"`
	ModerationEnabled bool   `env:"MODERATION_ENABLED,default=true"`
	CharReplacement   string `env:"CHARACTER_REPLACEMENT,default=*"`
	MaxCaptionLength  int    `env:"MAX_CAPTION_LENGTH,default=500"`

	StreamPollInterval time.Duration `env:"STREAM_POLL_INTERVAL,default=1s"`
	CorsAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// AllowedOrigins splits the comma separated CORS origins.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CorsAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) GrpcAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GrpcPort)
}
