// Package version carries build metadata injected with ldflags:
//
//	go build -ldflags "-X github.com/vitos/crypto_gap_board/internal/version.Version=1.2.0 \
//	                   -X github.com/vitos/crypto_gap_board/internal/version.Commit=$(git rev-parse --short HEAD)" ./cmd/board
package version

import "go.uber.org/zap"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// Fields returns the build metadata as log fields.
func Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_time", BuildTime),
	}
}
