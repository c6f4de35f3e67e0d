package common

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// LoggingInterceptor logs every unary gRPC call's request body as
// JSON. Used by health to log health-check traffic.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	msg, ok := req.(protoreflect.ProtoMessage)
	if !ok {
		slog.Warn("LoggingInterceptor: request is not a protoreflect.ProtoMessage", "method", info.FullMethod)
		return handler(ctx, req)
	}

	marshaler := protojson.MarshalOptions{Multiline: false, EmitUnpopulated: true}
	jsonReq, err := marshaler.Marshal(msg)
	if err != nil {
		slog.Warn("LoggingInterceptor: marshal error", "error", err)
	}
	slog.Debug("RPC", "method", info.FullMethod, "request", string(jsonReq))
	return handler(ctx, req)
}
