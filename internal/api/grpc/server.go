package grpc

import (
	"log"
	"time"

	"posts-service/internal/api/grpc/interceptors"
	"posts-service/internal/auth"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// ServerOptions - параметры создания gRPC сервера
type ServerOptions struct {
	// Verifier проверяет Bearer токены. nil - все запросы анонимные.
	Verifier *auth.Verifier
	// UseReflection включает reflection (для grpcurl/grpcui)
	UseReflection bool
	// MaxConcurrentStreams ограничивает количество одновременных стримов
	MaxConcurrentStreams uint32
}

// NewServer создает и настраивает gRPC сервер с интерцепторами и конфигурацией.
// Возвращает также health-сервер, чтобы при shutdown перевести сервис в NOT_SERVING.
func NewServer(handler PostsServiceServer, opts ServerOptions) (*grpc.Server, *health.Server) {
	maxStreams := opts.MaxConcurrentStreams
	if maxStreams == 0 {
		maxStreams = 25
	}

	// Порядок интерцепторов важен:
	// 1. Logger - логирует все запросы (включая отклоненные)
	// 2. Auth - кладет сессию в контекст или отклоняет невалидный токен
	grpcServer := grpc.NewServer(
		grpc.MaxConcurrentStreams(maxStreams),
		// KeepAlive параметры для защиты от зависших соединений
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     30 * time.Minute,
			MaxConnectionAge:      1 * time.Hour,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  10 * time.Minute,
			Timeout:               20 * time.Second,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggerUnaryInterceptor,
			interceptors.AuthUnaryInterceptor(opts.Verifier),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamInterceptor,
			interceptors.AuthStreamInterceptor(opts.Verifier),
		),
	)

	RegisterPostsServiceServer(grpcServer, handler)
	log.Println("Registered PostsService")

	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	log.Println("Registered health service")

	if opts.UseReflection {
		reflection.Register(grpcServer)
		log.Println("Enabled gRPC reflection")
	}

	return grpcServer, healthServer
}
