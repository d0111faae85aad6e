package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"posts-service/internal/auth"
	"posts-service/internal/converter"
	"posts-service/internal/model"
	"posts-service/internal/repository/memory"
	"posts-service/internal/service/posts"
)

const (
	testSecret = "test-secret"
	testUserID = "550e8400-e29b-41d4-a716-446655440001"
)

type testEnv struct {
	client *PostsClient
	conn   *grpc.ClientConn
	hub    *posts.EventHub
	cancel context.CancelFunc
}

// startServer поднимает gRPC сервер поверх bufconn с in-memory репозиторием
func startServer(t *testing.T) *testEnv {
	t.Helper()

	repo, err := memory.NewRepository(memory.Config{Seed: memory.Fixtures(), Sessions: auth.ContextSource{}})
	require.NoError(t, err)

	verifier, err := auth.NewVerifier(testSecret)
	require.NoError(t, err)

	hub := posts.NewEventHub()
	serverCtx, cancel := context.WithCancel(context.Background())
	handler := NewHandler(posts.NewPostService(repo), hub, serverCtx)

	server, _ := NewServer(handler, ServerOptions{Verifier: verifier})

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		cancel()
		_ = conn.Close()
		server.Stop()
	})

	return &testEnv{client: NewPostsClient(conn), conn: conn, hub: hub, cancel: cancel}
}

func signedInContext(t *testing.T) context.Context {
	t.Helper()
	token, err := auth.IssueToken(testSecret, auth.Session{UserID: testUserID}, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServer_CRUD(t *testing.T) {
	env := startServer(t)
	ctx := signedInContext(t)

	// Create
	body, err := converter.CreateDtoToStruct(model.CreatePostDto{PostContent: model.PostContent{Title: "Hello", Content: "World"}})
	require.NoError(t, err)
	createdResp, err := env.client.CreatePost(ctx, body)
	require.NoError(t, err)
	created, err := converter.StructToPost(createdResp)
	require.NoError(t, err)
	assert.Equal(t, testUserID, created.AuthorID, "author must come from the token")

	// Get
	getResp, err := env.client.GetPost(ctx, created.ID)
	require.NoError(t, err)
	got, err := converter.StructToPost(getResp)
	require.NoError(t, err)
	assert.Equal(t, created.PostContent, got.PostContent)

	// Update
	title := "Updated"
	patch, err := converter.PatchToStruct(model.PostPatch{Title: &title})
	require.NoError(t, err)
	updatedResp, err := env.client.UpdatePost(ctx, created.ID, patch)
	require.NoError(t, err)
	updated, err := converter.StructToPost(updatedResp)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, "World", updated.Content)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// List
	listResp, err := env.client.ListPosts(ctx)
	require.NoError(t, err)
	list, err := converter.StructToPosts(listResp)
	require.NoError(t, err)
	assert.Len(t, list, len(memory.Fixtures())+1)
	assert.Equal(t, created.ID, list[0].ID, "newest post first")

	// Delete, повторно без ошибки
	require.NoError(t, env.client.DeletePost(ctx, created.ID))
	require.NoError(t, env.client.DeletePost(ctx, created.ID))

	_, err = env.client.GetPost(ctx, created.ID)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_ValidationErrorOverTheWire(t *testing.T) {
	env := startServer(t)

	body, err := structpb.NewStruct(map[string]any{"title": "", "content": "x"})
	require.NoError(t, err)

	_, err = env.client.CreatePost(signedInContext(t), body)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_InvalidTokenRejected(t *testing.T) {
	env := startServer(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer garbage")

	_, err := env.client.ListPosts(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_WatchPosts(t *testing.T) {
	env := startServer(t)
	ctx, cancel := context.WithTimeout(signedInContext(t), 5*time.Second)
	defer cancel()

	stream, err := env.client.WatchPosts(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return env.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	body, err := converter.CreateDtoToStruct(model.CreatePostDto{PostContent: model.PostContent{Title: "Live", Content: "Event"}})
	require.NoError(t, err)
	_, err = env.client.CreatePost(ctx, body)
	require.NoError(t, err)

	msg, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "created", msg.GetFields()["type"].GetStringValue())
	assert.Equal(t, "Live", msg.GetFields()["post"].GetStructValue().GetFields()["title"].GetStringValue())

	// Отмена серверного контекста завершает стрим
	env.cancel()
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestServer_Health(t *testing.T) {
	env := startServer(t)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
