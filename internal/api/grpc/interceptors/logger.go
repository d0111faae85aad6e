package interceptors

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LoggerUnaryInterceptor логирует каждый unary запрос:
// метод и адрес клиента, код ответа и время выполнения.
// Стоит первым в цепочке, поэтому видит и запросы, отклоненные Auth.
func LoggerUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	addr := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}

	log.Printf("Incoming request: %s from %s", info.FullMethod, addr)

	start := time.Now()
	resp, err := handler(ctx, req)
	duration := time.Since(start)

	if err != nil {
		st := status.Convert(err)
		log.Printf("Request %s failed with status %s: %v (duration: %v)",
			info.FullMethod, st.Code(), st.Message(), duration)
	} else {
		log.Printf("Request %s completed successfully (duration: %v)",
			info.FullMethod, duration)
	}

	return resp, err
}
