package delete_override

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
)

type OverrideService interface {
	Delete(ctx context.Context, actor domain.Actor, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
