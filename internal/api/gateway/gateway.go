package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	grpcapi "posts-service/internal/api/grpc"
	"posts-service/internal/api/http/middleware"
	"posts-service/internal/config"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/rs/cors"
	"github.com/tmc/grpc-websocket-proxy/wsproxy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// defaultMaxBodyBytes - лимит тела запроса по умолчанию (картинка приходит в base64)
const defaultMaxBodyBytes = 10 << 20

// Маршруты HTTP API
const (
	postsPath = "/api/v1/posts"
	postPath  = "/api/v1/posts/{id}"
	watchPath = "/api/v1/posts:watch"
	// uploadsPath отдает объекты in-memory хранилища картинок
	uploadsPath = "/uploads/{path=**}"
)

// Dial создает клиентское соединение gateway с gRPC сервером
func Dial(grpcAddr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial gRPC server %s: %w", grpcAddr, err)
	}
	return conn, nil
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

type gateway struct {
	mux          *runtime.ServeMux
	client       *grpcapi.PostsClient
	maxBodyBytes int64
}

// NewHandler собирает HTTP Gateway поверх gRPC соединения.
// uploads (может быть nil) монтируется на /uploads/.
func NewHandler(conn grpc.ClientConnInterface, cfg *config.ConfigGateway, uploads http.Handler) (http.Handler, error) {
	if cfg == nil {
		cfg = &config.ConfigGateway{}
	}

	// Передаем заголовок Authorization из HTTP в gRPC metadata.
	// Это необходимо для работы Auth интерцептора на gRPC сервере.
	gwMux := runtime.NewServeMux(
		runtime.WithMetadata(func(ctx context.Context, req *http.Request) metadata.MD {
			md := metadata.New(nil)
			if auth := req.Header.Get("Authorization"); auth != "" {
				md.Set("authorization", auth)
			}
			return md
		}),
	)

	g := &gateway{
		mux:          gwMux,
		client:       grpcapi.NewPostsClient(conn),
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if g.maxBodyBytes <= 0 {
		g.maxBodyBytes = defaultMaxBodyBytes
	}

	routes := []route{
		{http.MethodGet, postsPath, g.listPosts},
		{http.MethodPost, postsPath, g.createPost},
		{http.MethodGet, watchPath, g.watchPosts},
		{http.MethodGet, postPath, g.getPost},
		{http.MethodPatch, postPath, g.updatePost},
		{http.MethodDelete, postPath, g.deletePost},
	}
	if uploads != nil {
		stripped := http.StripPrefix("/uploads", uploads)
		serveUpload := func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			stripped.ServeHTTP(w, r)
		}
		routes = append(routes,
			route{http.MethodGet, uploadsPath, serveUpload},
			route{http.MethodHead, uploadsPath, serveUpload},
		)
	}

	for _, rt := range routes {
		if err := gwMux.HandlePath(rt.method, rt.pattern, rt.handler); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", rt.method, rt.pattern, err)
		}
	}

	// Применение middleware (в обратном порядке выполнения):
	// 1. WebSocket Proxy (для WatchPosts - самый внешний слой)
	// 2. CORS (обработка CORS заголовков)
	// 3. Logging (логирует все запросы)
	// 4. Rate Limiting (ограничивает количество запросов)
	var handler http.Handler = gwMux
	handler = middleware.RateLimit(handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler = middleware.Logging(handler)
	handler = setupCORS(cfg).Handler(handler)
	// WebSocket proxy должен быть последним (самым внешним), чтобы корректно обрабатывать upgrade
	handler = wsproxy.WebsocketProxy(handler)

	log.Printf("CORS enabled for origins: %s", cfg.CORSAllowedOrigins)
	log.Printf("WebSocket proxy enabled for %s", watchPath)

	return handler, nil
}

// call - общая часть unary маршрутов: контекст с metadata, вызов gRPC, ответ или ошибка
func (g *gateway) call(w http.ResponseWriter, r *http.Request, rpcMethod, pattern string,
	invoke func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error)) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	ctx, err := runtime.AnnotateContext(r.Context(), g.mux, r, rpcMethod, runtime.WithHTTPPathPattern(pattern))
	if err != nil {
		runtime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
		return
	}

	var md runtime.ServerMetadata
	resp, err := invoke(ctx, grpc.Header(&md.HeaderMD), grpc.Trailer(&md.TrailerMD))
	ctx = runtime.NewServerMetadataContext(ctx, md)
	if err != nil {
		runtime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}

	runtime.ForwardResponseMessage(ctx, g.mux, outbound, w, r, resp)
}

// decodeBody читает JSON тело запроса в structpb.Struct
func (g *gateway) decodeBody(w http.ResponseWriter, r *http.Request) (*structpb.Struct, error) {
	inbound, _ := runtime.MarshalerForRequest(g.mux, r)

	body := new(structpb.Struct)
	if err := inbound.NewDecoder(http.MaxBytesReader(w, r.Body, g.maxBodyBytes)).Decode(body); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request body: %v", err)
	}
	return body, nil
}

func (g *gateway) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)
	runtime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
}

func (g *gateway) listPosts(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	g.call(w, r, grpcapi.ListPostsMethod, postsPath, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.ListPosts(ctx, opts...)
	})
}

func (g *gateway) getPost(w http.ResponseWriter, r *http.Request, params map[string]string) {
	g.call(w, r, grpcapi.GetPostMethod, postPath, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.GetPost(ctx, params["id"], opts...)
	})
}

func (g *gateway) createPost(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	body, err := g.decodeBody(w, r)
	if err != nil {
		g.fail(w, r, err)
		return
	}

	g.call(w, r, grpcapi.CreatePostMethod, postsPath, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.CreatePost(ctx, body, opts...)
	})
}

func (g *gateway) updatePost(w http.ResponseWriter, r *http.Request, params map[string]string) {
	body, err := g.decodeBody(w, r)
	if err != nil {
		g.fail(w, r, err)
		return
	}

	g.call(w, r, grpcapi.UpdatePostMethod, postPath, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		return g.client.UpdatePost(ctx, params["id"], body, opts...)
	})
}

func (g *gateway) deletePost(w http.ResponseWriter, r *http.Request, params map[string]string) {
	g.call(w, r, grpcapi.DeletePostMethod, postPath, func(ctx context.Context, opts ...grpc.CallOption) (proto.Message, error) {
		if err := g.client.DeletePost(ctx, params["id"], opts...); err != nil {
			return nil, err
		}
		return &structpb.Struct{}, nil
	})
}

// watchPosts отдает события построчно (newline-delimited JSON) до отключения клиента
func (g *gateway) watchPosts(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	_, outbound := runtime.MarshalerForRequest(g.mux, r)

	ctx, err := runtime.AnnotateContext(r.Context(), g.mux, r, grpcapi.WatchPostsMethod, runtime.WithHTTPPathPattern(watchPath))
	if err != nil {
		runtime.HTTPError(r.Context(), g.mux, outbound, w, r, err)
		return
	}

	stream, err := g.client.WatchPosts(ctx)
	if err != nil {
		runtime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}

	header, err := stream.Header()
	if err != nil {
		runtime.HTTPError(ctx, g.mux, outbound, w, r, err)
		return
	}
	ctx = runtime.NewServerMetadataContext(ctx, runtime.ServerMetadata{HeaderMD: header})

	runtime.ForwardResponseStream(ctx, g.mux, outbound, w, r, func() (proto.Message, error) {
		return stream.Recv()
	})
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigGateway) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-Requested-With",
		},
		AllowCredentials: true,
		MaxAge:           maxAge,
	})
}
