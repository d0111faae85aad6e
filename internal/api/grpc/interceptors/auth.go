package interceptors

import (
	"context"
	"strings"

	"posts-service/internal/auth"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authorizationHeader - имя заголовка для авторизации в metadata
const authorizationHeader = "authorization"

// AuthUnaryInterceptor проверяет токен авторизации в metadata запроса.
// Токен передается в заголовке "authorization" в формате "Bearer <jwt>".
// Без заголовка запрос проходит анонимно: нужна ли сессия, решает репозиторий.
// Невалидный заголовок или токен отклоняется с кодом Unauthenticated.
func AuthUnaryInterceptor(verifier *auth.Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := authenticate(ctx, verifier)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// AuthStreamInterceptor - то же для стримов
func AuthStreamInterceptor(verifier *auth.Verifier) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := authenticate(ss.Context(), verifier)
		if err != nil {
			return err
		}
		return handler(srv, &contextServerStream{ServerStream: ss, ctx: ctx})
	}
}

// authenticate кладет сессию из токена в контекст
func authenticate(ctx context.Context, verifier *auth.Verifier) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, nil
	}

	authHeaders := md.Get(authorizationHeader)
	if len(authHeaders) == 0 || authHeaders[0] == "" {
		return ctx, nil
	}

	token, found := strings.CutPrefix(authHeaders[0], "Bearer ")
	if !found || token == "" {
		return nil, status.Error(codes.Unauthenticated, "invalid authorization header format")
	}

	if verifier == nil {
		return nil, status.Error(codes.Unauthenticated, "token authentication is not configured")
	}

	session, err := verifier.Verify(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return auth.WithSession(ctx, session), nil
}

// contextServerStream подменяет контекст стрима
type contextServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextServerStream) Context() context.Context {
	return s.ctx
}
