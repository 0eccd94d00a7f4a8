package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, request ID, duration, and any error codes/messages.
// Client errors are logged at WARN, everything else that fails at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := GetRequestID(ctx)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err == nil {
				slog.Info("RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"duration_ms", duration,
				)
				return resp, nil
			}

			code := connect.CodeOf(err)
			var connectErr *connect.Error
			message := err.Error()
			if errors.As(err, &connectErr) {
				message = connectErr.Message()
			}
			level := slog.LevelWarn
			if isServerError(code) {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "RPC error",
				"procedure", procedure,
				"code", code,
				"error", message,
				"request_id", requestID,
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}

func isServerError(code connect.Code) bool {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}
