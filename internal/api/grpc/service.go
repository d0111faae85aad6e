package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Сервис описан вручную поверх well-known типов protobuf:
// посты передаются как google.protobuf.Struct с полями доменной модели.
const (
	ServiceName = "posts.v1.PostsService"

	ListPostsMethod  = "/posts.v1.PostsService/ListPosts"
	GetPostMethod    = "/posts.v1.PostsService/GetPost"
	CreatePostMethod = "/posts.v1.PostsService/CreatePost"
	UpdatePostMethod = "/posts.v1.PostsService/UpdatePost"
	DeletePostMethod = "/posts.v1.PostsService/DeletePost"
	WatchPostsMethod = "/posts.v1.PostsService/WatchPosts"
)

// PostsServiceServer - серверная часть posts.v1.PostsService.
//
//	ListPosts(Empty) -> {"posts": [Post...]}
//	GetPost(StringValue id) -> Post
//	CreatePost({title, content, imageUrl?, excerpt?, image?}) -> Post
//	UpdatePost({"id": string, "patch": {...}}) -> Post
//	DeletePost(StringValue id) -> Empty
//	WatchPosts(Empty) -> stream {"type": "created|updated|deleted", "post": Post} или {"type": "deleted", "id": string}
type PostsServiceServer interface {
	ListPosts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetPost(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreatePost(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdatePost(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePost(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	WatchPosts(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

// PostsServiceDesc - описание сервиса для grpc.Server.RegisterService
var PostsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PostsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListPosts", Handler: listPostsHandler},
		{MethodName: "GetPost", Handler: getPostHandler},
		{MethodName: "CreatePost", Handler: createPostHandler},
		{MethodName: "UpdatePost", Handler: updatePostHandler},
		{MethodName: "DeletePost", Handler: deletePostHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchPosts", Handler: watchPostsHandler, ServerStreams: true},
	},
	Metadata: "posts/v1/posts.proto",
}

// RegisterPostsServiceServer регистрирует реализацию сервиса на сервере
func RegisterPostsServiceServer(s grpc.ServiceRegistrar, srv PostsServiceServer) {
	s.RegisterService(&PostsServiceDesc, srv)
}

// unaryHandler строит grpc.MethodHandler для метода с запросом типа Req
func unaryHandler[Req any, Resp any](method string, call func(PostsServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PostsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PostsServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	listPostsHandler  = unaryHandler(ListPostsMethod, PostsServiceServer.ListPosts)
	getPostHandler    = unaryHandler(GetPostMethod, PostsServiceServer.GetPost)
	createPostHandler = unaryHandler(CreatePostMethod, PostsServiceServer.CreatePost)
	updatePostHandler = unaryHandler(UpdatePostMethod, PostsServiceServer.UpdatePost)
	deletePostHandler = unaryHandler(DeletePostMethod, PostsServiceServer.DeletePost)
)

func watchPostsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(PostsServiceServer).WatchPosts(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// PostsClient - клиент posts.v1.PostsService поверх любого grpc.ClientConnInterface
type PostsClient struct {
	cc grpc.ClientConnInterface
}

// NewPostsClient создает клиент сервиса постов
func NewPostsClient(cc grpc.ClientConnInterface) *PostsClient {
	return &PostsClient{cc: cc}
}

func (c *PostsClient) ListPosts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListPostsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PostsClient) GetPost(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetPostMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PostsClient) CreatePost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CreatePostMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePost отправляет {"id": id, "patch": patch}
func (c *PostsClient) UpdatePost(ctx context.Context, id string, patch *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if patch == nil {
		patch = &structpb.Struct{}
	}
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":    structpb.NewStringValue(id),
		"patch": structpb.NewStructValue(patch),
	}}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UpdatePostMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PostsClient) DeletePost(ctx context.Context, id string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, DeletePostMethod, wrapperspb.String(id), &emptypb.Empty{}, opts...)
}

// WatchPosts открывает стрим событий изменения постов
func (c *PostsClient) WatchPosts(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &PostsServiceDesc.Streams[0], WatchPostsMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
