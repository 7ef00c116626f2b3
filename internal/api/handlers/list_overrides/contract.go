package list_overrides

import (
	"context"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/internal/service/overrides/models"
)

type OverrideService interface {
	List(ctx context.Context, actor domain.Actor, req *models.ListOverridesRequest) (*models.OverrideListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
