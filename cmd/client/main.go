package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	grpcapi "posts-service/internal/api/grpc"
	"posts-service/internal/auth"
	"posts-service/internal/converter"
	"posts-service/internal/model"

	"github.com/joho/godotenv"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultAddress = "localhost:50051"
	defaultUserID  = "550e8400-e29b-41d4-a716-446655440007"
)

const usage = `Usage: client <command> [flags]

Commands:
  list                                   list all posts
  get <id>                               show a post
  create -title T -content C [-excerpt E] [-image-url U | -image FILE]
  update <id> [-title T] [-content C] [-excerpt E] [-image-url U | -image FILE]
  delete <id>                            delete a post
  watch                                  stream post changes
  token                                  print a signed access token

Environment:
  SERVER_ADDRESS   gRPC address (default localhost:50051)
  AUTH_TOKEN       bearer token; if empty and JWT_SECRET is set, a token is issued for USER_ID
  JWT_SECRET, USER_ID
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	token, err := accessToken()
	if err != nil {
		log.Fatalf("Failed to get access token: %v", err)
	}

	if command == "token" {
		if token == "" {
			log.Fatal("JWT_SECRET is not set")
		}
		fmt.Println(token)
		return
	}

	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = defaultAddress
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer conn.Close()

	client := grpcapi.NewPostsClient(conn)

	// watch живет до Ctrl+C, остальные команды ограничены таймаутом
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if command == "watch" {
		ctx, cancel = context.WithCancel(context.Background())
	} else {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	}
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}

	if err := run(ctx, client, command, args); err != nil {
		printError(err)
		os.Exit(1)
	}
}

// accessToken берет AUTH_TOKEN или выпускает токен по JWT_SECRET
func accessToken() (string, error) {
	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		return token, nil
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", nil
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = defaultUserID
	}
	return auth.IssueToken(secret, auth.Session{UserID: userID}, time.Hour)
}

func run(ctx context.Context, client *grpcapi.PostsClient, command string, args []string) error {
	switch command {
	case "list":
		resp, err := client.ListPosts(ctx)
		if err != nil {
			return err
		}
		list, err := converter.StructToPosts(resp)
		if err != nil {
			return err
		}
		for _, post := range list {
			fmt.Println(converter.String(post))
		}
		log.Printf("%d posts", len(list))
		return nil

	case "get":
		if len(args) != 1 {
			return errors.New("usage: get <id>")
		}
		resp, err := client.GetPost(ctx, args[0])
		if err != nil {
			return err
		}
		return printPost(resp)

	case "create":
		fields, err := parseFields("create", args)
		if err != nil {
			return err
		}
		dto := model.CreatePostDto{Image: fields.image}
		dto.Title, dto.Content = deref(fields.title), deref(fields.content)
		dto.Excerpt, dto.ImageURL = deref(fields.excerpt), deref(fields.imageURL)

		body, err := converter.CreateDtoToStruct(dto)
		if err != nil {
			return err
		}
		resp, err := client.CreatePost(ctx, body)
		if err != nil {
			return err
		}
		return printPost(resp)

	case "update":
		if len(args) < 1 {
			return errors.New("usage: update <id> [flags]")
		}
		fields, err := parseFields("update", args[1:])
		if err != nil {
			return err
		}
		patch := model.PostPatch{
			Title:    fields.title,
			Content:  fields.content,
			Excerpt:  fields.excerpt,
			ImageURL: fields.imageURL,
			Image:    fields.image,
		}

		body, err := converter.PatchToStruct(patch)
		if err != nil {
			return err
		}
		resp, err := client.UpdatePost(ctx, args[0], body)
		if err != nil {
			return err
		}
		return printPost(resp)

	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <id>")
		}
		if err := client.DeletePost(ctx, args[0]); err != nil {
			return err
		}
		log.Printf("Deleted %s", args[0])
		return nil

	case "watch":
		return watch(ctx, client)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// watch печатает события, пока сервер не закроет стрим
func watch(ctx context.Context, client *grpcapi.PostsClient) error {
	stream, err := client.WatchPosts(ctx)
	if err != nil {
		return err
	}
	log.Println("Subscribed to post events, waiting...")

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			log.Println("Stream closed by server")
			return nil
		}
		if err != nil {
			return err
		}

		fields := msg.GetFields()
		eventType := fields["type"].GetStringValue()
		if post := fields["post"].GetStructValue(); post != nil {
			parsed, err := converter.StructToPost(post)
			if err != nil {
				return err
			}
			fmt.Printf("[%s] %s\n", eventType, converter.String(parsed))
			continue
		}
		fmt.Printf("[%s] %s\n", eventType, fields["id"].GetStringValue())
	}
}

// postFields - поля из флагов; nil означает "не задано"
type postFields struct {
	title, content, excerpt, imageURL *string
	image                             *model.File
}

func parseFields(name string, args []string) (postFields, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post content")
	excerpt := fs.String("excerpt", "", "short excerpt")
	imageURL := fs.String("image-url", "", "image url")
	imagePath := fs.String("image", "", "image file to upload")
	if err := fs.Parse(args); err != nil {
		return postFields{}, err
	}

	var fields postFields
	var imageErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			fields.title = title
		case "content":
			fields.content = content
		case "excerpt":
			fields.excerpt = excerpt
		case "image-url":
			fields.imageURL = imageURL
		case "image":
			fields.image, imageErr = readImage(*imagePath)
		}
	})

	return fields, imageErr
}

func readImage(path string) (*model.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &model.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func printPost(resp *structpb.Struct) error {
	post, err := converter.StructToPost(resp)
	if err != nil {
		return err
	}
	fmt.Println(converter.String(post))
	return nil
}

// printError выводит gRPC статус вместе с деталями
func printError(err error) {
	st, ok := status.FromError(err)
	if !ok {
		log.Printf("Error: %v", err)
		return
	}

	log.Printf("Error: %s: %s", st.Code(), st.Message())
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.BadRequest:
			for _, v := range d.GetFieldViolations() {
				log.Printf("  field %s: %s", v.GetField(), v.GetDescription())
			}
		case *errdetails.ErrorInfo:
			log.Printf("  reason: %s (%s)", d.GetReason(), d.GetDomain())
		default:
			log.Printf("  detail: %v", d)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
