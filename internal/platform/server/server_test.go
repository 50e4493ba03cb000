package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ogurasousui/orgchart/internal/adapters/grpc/handler"
	"github.com/ogurasousui/orgchart/internal/adapters/repository/memory"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestServer_HealthAndShutdown(t *testing.T) {
	t.Parallel()

	svc := orgchart.NewService(memory.NewOrgChartStore(nil), nil, nil, nil, nil)
	srv := New("bufnet", svc)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		cancel()
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: handler.OrgChartServiceName,
	})
	if err != nil {
		cancel()
		t.Fatalf("health check failed: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		cancel()
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
