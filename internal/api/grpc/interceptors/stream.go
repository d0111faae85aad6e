package interceptors

import (
	"io"
	"log"
	"time"

	"google.golang.org/grpc"
)

// wrappedServerStream оборачивает grpc.ServerStream и считает отправленные сообщения
type wrappedServerStream struct {
	grpc.ServerStream
	sent int
}

// RecvMsg переопределяет метод для логирования входящих сообщений
func (w *wrappedServerStream) RecvMsg(m any) error {
	err := w.ServerStream.RecvMsg(m)
	if err != nil && err != io.EOF {
		log.Printf("Stream RecvMsg error: %v", err)
		return err
	}
	if err == nil {
		log.Printf("Stream RecvMsg: %T", m)
	}
	return err
}

// SendMsg логирует только ошибки отправки, успешные сообщения считаются
func (w *wrappedServerStream) SendMsg(m any) error {
	err := w.ServerStream.SendMsg(m)
	if err != nil {
		log.Printf("Stream SendMsg error: %v", err)
		return err
	}
	w.sent++
	return nil
}

// StreamInterceptor логирует открытие и завершение стрима.
// Вызывается при установлении стримингового соединения
func StreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	log.Printf("Stream connection established: %s", info.FullMethod)

	wrapped := &wrappedServerStream{
		ServerStream: ss,
	}

	// Вызываем обработчик с обернутым стримом
	start := time.Now()
	err := handler(srv, wrapped)
	if err != nil {
		log.Printf("Stream %s failed after %d messages: %v (duration: %v)", info.FullMethod, wrapped.sent, err, time.Since(start))
	} else {
		log.Printf("Stream %s completed: %d messages sent (duration: %v)", info.FullMethod, wrapped.sent, time.Since(start))
	}

	return err
}
