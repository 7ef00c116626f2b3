package get_employee_reservations

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
	"github.com/m04kA/SPA-BookingService/internal/service/reservations/models"
)

// ParseFilter собирает запрос к сервису из query параметров
// startDate, endDate (YYYY-MM-DD), status, includeInactive (true/false)
func ParseFilter(r *http.Request, employeeID int64) (*models.GetEmployeeReservationsRequest, error) {
	req := &models.GetEmployeeReservationsRequest{EmployeeID: employeeID}

	var err error
	if req.StartDate, err = handlers.QueryDate(r, "startDate"); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.QueryDate(r, "endDate"); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if raw := query.Get("includeInactive"); raw != "" {
		if req.IncludeInactive, err = strconv.ParseBool(raw); err != nil {
			return nil, err
		}
	}

	return req, nil
}
