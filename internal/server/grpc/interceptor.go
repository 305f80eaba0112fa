package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *HealthServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "processing_time_ms", time.Since(start).Milliseconds()}
	if code == codes.OK {
		s.logger.Debug(ctx, "rpc", args...)
	} else {
		s.logger.Warn(ctx, "rpc failed", append(args, "error", err)...)
	}

	return resp, err
}
