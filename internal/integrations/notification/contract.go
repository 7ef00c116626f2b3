package notification

import (
	"context"

	"github.com/m04kA/SPA-BookingService/pkg/mq"
)

// Broker транспорт, в который публикуются события (RabbitMQ в production)
type Broker interface {
	Publish(ctx context.Context, key string, env mq.Envelope) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
