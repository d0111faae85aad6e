package grpc

import (
	"context"
	"errors"
	"log"

	"posts-service/internal/converter"
	"posts-service/internal/model"
	"posts-service/internal/repository"
	svc "posts-service/internal/service"
	"posts-service/internal/service/posts"
	"posts-service/internal/upload"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// errorDomain - домен для errdetails.ErrorInfo
const errorDomain = "posts.v1"

var _ PostsServiceServer = (*Handler)(nil)

// Handler реализует gRPC сервер для PostsService
type Handler struct {
	postService svc.PostService
	events      *posts.EventHub

	// serverCtx отменяется при shutdown и завершает открытые стримы
	serverCtx context.Context
}

// NewHandler создает новый экземпляр gRPC хэндлера.
// events может быть nil: тогда WatchPosts недоступен.
func NewHandler(postService svc.PostService, events *posts.EventHub, serverCtx context.Context) *Handler {
	if serverCtx == nil {
		serverCtx = context.Background()
	}
	return &Handler{
		postService: postService,
		events:      events,
		serverCtx:   serverCtx,
	}
}

// ListPosts возвращает все посты
func (h *Handler) ListPosts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := h.postService.GetPosts(ctx)
	if err != nil {
		return nil, handleError(err)
	}

	resp, err := converter.PostsToStruct(list)
	if err != nil {
		return nil, handleError(err)
	}
	return resp, nil
}

// GetPost возвращает пост по ID
func (h *Handler) GetPost(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	post, err := h.postService.GetPost(ctx, req.GetValue())
	if err != nil {
		return nil, handleError(err)
	}

	return postResponse(post)
}

// CreatePost создает пост от имени текущего пользователя
func (h *Handler) CreatePost(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	dto, err := converter.StructToCreateDto(req)
	if err != nil {
		return nil, handleError(err)
	}

	post, err := h.postService.CreatePost(ctx, dto)
	if err != nil {
		return nil, handleError(err)
	}

	h.publish(posts.Event{Type: posts.EventCreated, Post: post})
	return postResponse(post)
}

// UpdatePost частично обновляет пост. Запрос: {"id": string, "patch": {...}}
func (h *Handler) UpdatePost(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	id, ok := fields["id"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, handleError(&model.ValidationError{Fields: []model.FieldError{{Field: "id", Rule: "required"}}})
	}

	var patch model.PostPatch
	if raw, exists := fields["patch"]; exists {
		body := raw.GetStructValue()
		if body == nil {
			return nil, handleError(&model.ValidationError{Fields: []model.FieldError{{Field: "patch", Rule: "type", Param: "object"}}})
		}
		var err error
		if patch, err = converter.StructToPatch(body); err != nil {
			return nil, handleError(err)
		}
	}

	post, err := h.postService.UpdatePost(ctx, id.StringValue, patch)
	if err != nil {
		return nil, handleError(err)
	}

	h.publish(posts.Event{Type: posts.EventUpdated, Post: post})
	return postResponse(post)
}

// DeletePost удаляет пост по ID. Удаление отсутствующего поста не является ошибкой.
func (h *Handler) DeletePost(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id := req.GetValue()

	// Удаление идемпотентно, но событие получают только посты, которые существовали
	_, getErr := h.postService.GetPost(ctx, id)
	existed := !errors.Is(getErr, repository.ErrPostNotFound)

	if err := h.postService.DeletePost(ctx, id); err != nil {
		return nil, handleError(err)
	}

	if existed {
		h.publish(posts.Event{Type: posts.EventDeleted, Post: model.Post{ID: id}})
	}
	return &emptypb.Empty{}, nil
}

// WatchPosts отправляет клиенту события изменения постов до отмены стрима или shutdown сервера
func (h *Handler) WatchPosts(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	if h.events == nil {
		return status.Error(codes.Unimplemented, "post events are disabled")
	}

	ch := h.events.Subscribe()
	defer h.events.Unsubscribe(ch)

	// Заголовки сразу: gateway ждет их, прежде чем ответить HTTP клиенту
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			log.Printf("WatchPosts: client disconnected: %v", ctx.Err())
			return nil
		case <-h.serverCtx.Done():
			return status.Error(codes.Unavailable, "server is shutting down")
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := eventToStruct(event)
			if err != nil {
				return handleError(err)
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) publish(event posts.Event) {
	if h.events != nil {
		h.events.Publish(event)
	}
}

func postResponse(post model.Post) (*structpb.Struct, error) {
	resp, err := converter.PostToStruct(post)
	if err != nil {
		return nil, handleError(err)
	}
	return resp, nil
}

// eventToStruct: для deleted отправляется только ID
func eventToStruct(event posts.Event) (*structpb.Struct, error) {
	if event.Type == posts.EventDeleted {
		return structpb.NewStruct(map[string]any{
			"type": string(event.Type),
			"id":   event.Post.ID,
		})
	}

	return structpb.NewStruct(map[string]any{
		"type": string(event.Type),
		"post": converter.PostToMap(event.Post),
	})
}

// handleError конвертирует внутренние ошибки в gRPC статусы с детализацией
func handleError(err error) error {
	if err == nil {
		return nil
	}

	// Ошибки схемы: перечисляем нарушенные поля
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		badRequest := &errdetails.BadRequest{}
		for _, f := range verr.Fields {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f.Field,
				Description: f.String(),
			})
		}
		return withDetails(status.New(codes.InvalidArgument, verr.Error()), badRequest)
	}

	if errors.Is(err, repository.ErrPostNotFound) {
		return withDetails(status.New(codes.NotFound, "post not found"), &errdetails.ErrorInfo{
			Reason: "POST_NOT_FOUND",
			Domain: errorDomain,
		})
	}

	if errors.Is(err, repository.ErrUnauthenticated) {
		return status.Error(codes.Unauthenticated, err.Error())
	}

	// Ограничения на загружаемую картинку
	if errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrFileTypeNotAccepted) || errors.Is(err, upload.ErrEmptyFile) {
		return withDetails(status.New(codes.InvalidArgument, err.Error()), &errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: "image", Description: err.Error()}},
		})
	}

	if errors.Is(err, repository.ErrUploaderNotConfigured) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}

	var storageErr *model.StorageError
	if errors.As(err, &storageErr) {
		log.Printf("Storage error: %v", err)
		return withDetails(status.New(codes.Unavailable, "storage unavailable"), &errdetails.ErrorInfo{
			Reason:   "STORAGE_ERROR",
			Domain:   errorDomain,
			Metadata: map[string]string{"op": storageErr.Op},
		})
	}

	// Все остальные ошибки - Internal
	log.Printf("Internal error: %v", err)
	return withDetails(status.New(codes.Internal, "internal error"), &errdetails.ErrorInfo{
		Reason: "INTERNAL_ERROR",
		Domain: errorDomain,
	})
}

// withDetails добавляет детали к статусу. Если не удалось, возвращает статус без деталей.
func withDetails(st *status.Status, details ...protoadapt.MessageV1) error {
	detailed, err := st.WithDetails(details...)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
