package create_override

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides/models"
)

type OverrideService interface {
	Create(ctx context.Context, actor domain.Actor, req *models.CreateOverrideRequest) (*models.OverrideResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
