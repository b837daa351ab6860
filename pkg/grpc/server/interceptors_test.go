package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestLoggingInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/TestMethod"}

	t.Run("successful request", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		resp, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
			return "success", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "success", resp)
		assert.Equal(t, 1, logs.FilterMessage("gRPC request completed").Len())
	})

	t.Run("caller error logged as warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		_, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "test error")
		})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		entries := logs.FilterMessage("gRPC request rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("server error logged as error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		interceptor := LoggingInterceptor(zap.New(core))

		_, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
			return nil, status.Error(codes.Internal, "database error")
		})

		assert.Equal(t, codes.Internal, status.Code(err))
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Panics"}

	resp, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		panic("boom")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestNew_InvalidPort(t *testing.T) {
	_, err := New(WithPort(70000))
	assert.Error(t, err)
}

func TestServerBuilderWithLogging(t *testing.T) {
	lis := bufconn.Listen(1 << 20)

	server, err := New(
		WithListener(lis),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
	)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
	}()

	require.NotNil(t, server.grpcServer)
	require.NotNil(t, server.healthServer)

	server.RegisterServiceWithHealth("test.Service", func(*grpc.Server) {})
	server.Start()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthClient := healthpb.NewHealthClient(conn)
	resp, err := healthClient.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "test.Service"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	server.SetServiceHealth("test.Service", healthpb.HealthCheckResponse_NOT_SERVING)
	resp, err = healthClient.Check(ctx, &healthpb.HealthCheckRequest{Service: "test.Service"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
