// Command healthcheck is a minimal gRPC client for the pipeline's
// health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var (
	addr    = flag.String("address", "localhost:50052", "Health endpoint address.")
	service = flag.String("service", "matchcore.pipeline", "Service name to check.")
)

func main() {
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("healthcheck: failed to connect to [%s]: %v", *addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: *service})
	if err != nil {
		log.Fatalf("healthcheck: Check error: %v", err)
	}
	log.Printf("status: %s", resp.GetStatus())
}
