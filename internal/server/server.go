package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"posts-service/internal/api/gateway"
	grpcapi "posts-service/internal/api/grpc"
	"posts-service/internal/auth"
	"posts-service/internal/config"
	"posts-service/internal/repository"
	"posts-service/internal/repository/memory"
	"posts-service/internal/repository/remote"
	"posts-service/internal/service/posts"
	"posts-service/internal/upload"
	uploadmemory "posts-service/internal/upload/memory"
	"posts-service/internal/upload/storage"

	"github.com/jmoiron/sqlx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/grpclog"
	"google.golang.org/grpc/health"
)

// Server представляет сервер приложения с gRPC и HTTP Gateway
type Server struct {
	// HTTP компоненты
	HTTPServer *http.Server
	HTTPAddr   string

	// gRPC компоненты
	GRPCServer *grpc.Server
	Health     *health.Server
	GRPCAddr   string
	Listener   net.Listener

	// Контекст сервера для graceful shutdown стримов.
	// Отменяется при shutdown, WatchPosts слушает его и завершается.
	Ctx    context.Context
	Cancel context.CancelFunc

	// Конфигурация
	Config *config.Config

	db          *sqlx.DB
	gatewayConn *grpc.ClientConn
}

// NewServer создает и инициализирует новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Logger.Level == "debug" {
		grpclog.SetLoggerV2(grpclog.NewLoggerV2WithVerbosity(os.Stderr, os.Stderr, os.Stderr, 2))
	}

	grpcPort := cfg.Server.PortGRPC
	httpPort := cfg.Server.PortHTTP

	if grpcPort == 0 {
		grpcPort = 50051
		log.Printf("Warning: PortGRPC is 0, using default 50051")
	}
	if httpPort == 0 {
		httpPort = 8080
		log.Printf("Warning: PortHTTP is 0, using default 8080")
	}
	cfg.Server.PortGRPC, cfg.Server.PortHTTP = grpcPort, httpPort

	log.Printf("Config loaded: gRPC port=%d, HTTP port=%d, repository=%s, storage=%s",
		grpcPort, httpPort, cfg.Repository.Backend, cfg.Storage.Backend)

	grpcAddr := "0.0.0.0:" + strconv.Itoa(grpcPort)
	httpAddr := "0.0.0.0:" + strconv.Itoa(httpPort)

	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}

	// В отличие от unary методов, где контекст автоматически отменяется при GracefulStop(),
	// в стримах необходимо явно слушать этот контекст для корректного завершения
	serverCtx, serverCancel := context.WithCancel(context.Background())

	return &Server{
		HTTPAddr: httpAddr,
		GRPCAddr: grpcAddr,
		Listener: listener,
		Ctx:      serverCtx,
		Cancel:   serverCancel,
		Config:   cfg,
	}, nil
}

// Initialize инициализирует компоненты сервера (Uploader → Repository → Service → Handler → Gateway)
func (s *Server) Initialize(ctx context.Context) error {
	verifier, err := s.newVerifier()
	if err != nil {
		return err
	}

	uploader, uploads, err := s.newUploader()
	if err != nil {
		return err
	}

	postRepo, err := s.newRepository(ctx, uploader)
	if err != nil {
		return err
	}

	postSvc := posts.NewPostService(postRepo)
	log.Println("Initialized post service")

	events := posts.NewEventHub()
	postHandler := grpcapi.NewHandler(postSvc, events, s.Ctx)
	log.Println("Initialized gRPC handler with server context for graceful shutdown")

	s.GRPCServer, s.Health = grpcapi.NewServer(postHandler, grpcapi.ServerOptions{
		Verifier:             verifier,
		UseReflection:        s.Config.Server.UseReflection,
		MaxConcurrentStreams: uint32(s.Config.Server.MaxConcurrentStreams),
	})

	// Gateway ходит в gRPC сервер по сети, как внешний клиент
	s.gatewayConn, err = gateway.Dial("localhost:" + strconv.Itoa(s.Config.Server.PortGRPC))
	if err != nil {
		return err
	}

	handler, err := gateway.NewHandler(s.gatewayConn, s.Config.Gateway, uploads)
	if err != nil {
		return err
	}

	s.HTTPServer = &http.Server{
		Addr:              s.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       seconds(s.Config.Server.HTTPReadTimeout),
		WriteTimeout:      seconds(s.Config.Server.HTTPWriteTimeout),
		IdleTimeout:       seconds(s.Config.Server.HTTPIdleTimeout),
		ReadHeaderTimeout: seconds(s.Config.Server.HTTPReadHeaderTimeout),
	}

	return nil
}

func (s *Server) newVerifier() (*auth.Verifier, error) {
	if s.Config.Auth.JWTSecret == "" {
		log.Printf("Warning: auth.jwt_secret is empty, all requests are anonymous")
		return nil, nil
	}

	verifier, err := auth.NewVerifier(s.Config.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	return verifier, nil
}

// newUploader возвращает uploader и, для in-memory варианта, HTTP handler для /uploads/
func (s *Server) newUploader() (upload.Uploader, http.Handler, error) {
	cfg := s.Config.Storage
	defaults := &upload.Options{
		MaxSize:           cfg.MaxSize,
		AcceptedFileTypes: cfg.AcceptedTypes(),
	}

	if cfg.Backend == config.BackendRemote {
		uploader, err := storage.NewUploader(storage.Config{
			BaseURL:  cfg.BaseURL,
			Bucket:   cfg.Bucket,
			APIKey:   cfg.APIKey,
			Defaults: defaults,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage uploader: %w", err)
		}
		log.Printf("Initialized storage uploader (%s)", cfg.BaseURL)
		return uploader, nil, nil
	}

	publicURL := cfg.PublicBaseURL
	if publicURL == "" {
		publicURL = "http://localhost:" + strconv.Itoa(s.Config.Server.PortHTTP) + "/uploads"
	}
	uploader := uploadmemory.NewUploader(publicURL, defaults)
	log.Printf("Initialized in-memory uploader, served at %s", publicURL)
	return uploader, uploader, nil
}

func (s *Server) newRepository(ctx context.Context, uploader upload.Uploader) (repository.PostRepository, error) {
	if s.Config.Repository.Backend == config.BackendRemote {
		dbCfg := s.Config.Database
		db, err := remote.Connect(ctx, remote.DBConfig{
			Driver:          dbCfg.Driver,
			DSN:             dbCfg.DSN,
			MaxOpenConns:    dbCfg.MaxOpenConns,
			MaxIdleConns:    dbCfg.MaxIdleConns,
			ConnMaxLifetime: seconds(dbCfg.ConnMaxLifetime),
		})
		if err != nil {
			return nil, err
		}
		s.db = db

		if dbCfg.Migrate {
			if err := remote.Migrate(ctx, db); err != nil {
				return nil, err
			}
			log.Println("Applied posts table migration")
		}

		repo, err := remote.NewRepository(remote.Config{
			DB:       db,
			Sessions: auth.ContextSource{},
			Uploader: uploader,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Initialized remote repository (%s)", dbCfg.Driver)
		return repo, nil
	}

	repo, err := memory.NewRepository(memory.Config{
		Seed:            memory.Fixtures(),
		Uploader:        uploader,
		Sessions:        auth.ContextSource{},
		DefaultAuthorID: s.Config.Auth.DefaultAuthorID,
	})
	if err != nil {
		return nil, err
	}
	log.Println("Initialized in-memory repository with fixture posts")
	return repo, nil
}

// Start запускает gRPC и HTTP Gateway серверы в горутинах
// Возвращает канал ошибок для отслеживания ошибок серверов
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 2)

	go func() {
		log.Printf("gRPC server listening on %s", s.GRPCAddr)
		if err := s.GRPCServer.Serve(s.Listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		log.Printf("HTTP Gateway server listening on %s", s.HTTPAddr)
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP Gateway error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера
func (s *Server) Shutdown() error {
	log.Println("Starting graceful shutdown...")

	if s.Health != nil {
		s.Health.Shutdown()
	}

	// Отменяем контекст сервера ПЕРЕД GracefulStop(): иначе открытые WatchPosts не дадут ему завершиться
	log.Println("Cancelling server context to signal streaming methods to stop...")
	s.Cancel()

	shutdownTimeout := time.Duration(s.Config.Server.GracefulShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if s.HTTPServer != nil {
		if err := s.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP Gateway shutdown: %w", err))
		}
		log.Println("HTTP Gateway stopped")
	}

	if s.gatewayConn != nil {
		_ = s.gatewayConn.Close()
	}

	if s.GRPCServer == nil && s.Listener != nil {
		_ = s.Listener.Close()
	}

	if s.GRPCServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.GRPCServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
			log.Println("gRPC server stopped gracefully")
		case <-ctx.Done():
			log.Println("Graceful shutdown timeout, forcing stop...")
			s.GRPCServer.Stop()
			log.Println("gRPC server stopped forcefully")
			errs = append(errs, ctx.Err())
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
