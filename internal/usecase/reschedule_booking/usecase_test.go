package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/pkg/logger"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// 2025-10-15 среда
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) GetActiveByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) ([]*domain.Reservation, error) {
	args := m.Called(ctx, employeeID, date)
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) LockEmployeeDay(ctx context.Context, employeeID int64, date time.Time) error {
	return m.Called(ctx, employeeID, date).Error(0)
}

func (m *mockReservationRepo) Reschedule(ctx context.Context, id int64, interval domain.Interval) error {
	return m.Called(ctx, id, interval).Error(0)
}

type noOverrides struct{}

func (noOverrides) GetByEmployeeAndDate(context.Context, int64, time.Time) ([]*domain.AvailabilityOverride, error) {
	return []*domain.AvailabilityOverride{}, nil
}

type staticEmployees struct{ inactive bool }

func (e staticEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	return &domain.Employee{ID: id, Name: "Anna", IsActive: !e.inactive, Schedule: domain.WorkSchedule{
		EmployeeID: id,
		DailyStart: types.MustTimeString("09:00"),
		DailyEnd:   types.MustTimeString("17:00"),
		WorkDays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}}, nil
}

type passThroughTx struct{}

func (passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingCache struct{ dates []string }

func (c *recordingCache) Invalidate(_ context.Context, _ int64, date time.Time) error {
	c.dates = append(c.dates, date.Format(domain.DateFormat))
	return nil
}

type recordingSink struct{ events []domain.ReservationEvent }

func (s *recordingSink) Publish(_ context.Context, event domain.ReservationEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

func reservation(id, userID int64, start, end string, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:              id,
		UserID:          userID,
		EmployeeID:      1,
		ServiceID:       10,
		Date:            testDate,
		StartTime:       types.MustTimeString(start),
		EndTime:         types.MustTimeString(end),
		Status:          status,
		DurationMinutes: types.MustTimeString(end).Sub(types.MustTimeString(start)),
	}
}

type fixture struct {
	repo  *mockReservationRepo
	cache *recordingCache
	sink  *recordingSink
	uc    *UseCase
}

func newFixture() *fixture {
	f := &fixture{repo: &mockReservationRepo{}, cache: &recordingCache{}, sink: &recordingSink{}}
	f.uc = NewUseCase(f.repo, noOverrides{}, staticEmployees{}, passThroughTx{}, f.cache, f.sink,
		(*metrics.Metrics)(nil), Settings{}, logger.NewNop()).
		WithTimeProvider(fixedTime{now: testDate.AddDate(0, 0, -1)})
	return f
}

func owner() domain.Actor { return domain.Actor{UserID: 7, Role: domain.RoleClient} }

func TestUseCase_Execute_SameDayKeepsDuration(t *testing.T) {
	f := newFixture()
	current := reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed)
	want := domain.Interval{Date: testDate, Start: types.MustTimeString("10:30"), End: types.MustTimeString("11:30")}

	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), testDate).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), testDate).
		Return([]*domain.Reservation{current}, nil)
	f.repo.On("Reschedule", mock.Anything, int64(5), want).Return(nil)

	got, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("10:30"),
	})

	require.NoError(t, err)
	assert.Equal(t, "10:30", got.StartTime.String())
	assert.Equal(t, "11:30", got.EndTime.String())
	assert.Equal(t, []string{"2025-10-15"}, f.cache.dates)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.ActionRescheduled, f.sink.events[0].Action)
	f.repo.AssertExpectations(t)
}

func TestUseCase_Execute_OtherDayInvalidatesBothDates(t *testing.T) {
	f := newFixture()
	nextDay := testDate.AddDate(0, 0, 1)
	current := reservation(5, 7, "10:00", "11:00", domain.StatusPending)

	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), nextDay).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), nextDay).Return([]*domain.Reservation{}, nil)
	f.repo.On("Reschedule", mock.Anything, int64(5), mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: nextDay, StartTime: types.MustTimeString("14:00"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-10-15", "2025-10-16"}, f.cache.dates)
}

func TestUseCase_Execute_OverlapWithOtherReservation(t *testing.T) {
	f := newFixture()
	current := reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed)
	other := reservation(6, 8, "11:00", "12:00", domain.StatusPending)

	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), testDate).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), testDate).
		Return([]*domain.Reservation{current, other}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("10:30"),
	})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.repo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.sink.events)
}

func TestUseCase_Execute_StorageOverlap(t *testing.T) {
	f := newFixture()
	current := reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed)

	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), testDate).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), testDate).Return([]*domain.Reservation{current}, nil)
	f.repo.On("Reschedule", mock.Anything, int64(5), mock.Anything).Return(reservationRepo.ErrOverlap)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestUseCase_Execute_AccessDenied(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed), nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: domain.Actor{UserID: 99, Role: domain.RoleClient},
		Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUseCase_Execute_StaffCanReschedule(t *testing.T) {
	f := newFixture()
	current := reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed)
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), testDate).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), testDate).Return([]*domain.Reservation{current}, nil)
	f.repo.On("Reschedule", mock.Anything, int64(5), mock.Anything).Return(nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: domain.Actor{UserID: 2, Role: domain.RoleAdmin},
		Date: testDate, StartTime: types.MustTimeString("15:00"),
	})

	assert.NoError(t, err)
}

func TestUseCase_Execute_InactiveReservation(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(reservation(5, 7, "10:00", "11:00", domain.StatusCancelled), nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, domain.ErrNotActive)
}

func TestUseCase_Execute_ConcurrentStatusChange(t *testing.T) {
	f := newFixture()
	current := reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed)
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(current, nil)
	f.repo.On("LockEmployeeDay", mock.Anything, int64(1), testDate).Return(nil)
	f.repo.On("GetActiveByEmployeeAndDate", mock.Anything, int64(1), testDate).Return([]*domain.Reservation{current}, nil)
	f.repo.On("Reschedule", mock.Anything, int64(5), mock.Anything).Return(reservationRepo.ErrStatusChanged)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUseCase_Execute_NotFound(t *testing.T) {
	f := newFixture()
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(nil, reservationRepo.ErrReservationNotFound)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestUseCase_Execute_PastDate(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate.AddDate(0, 0, -5), StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, domain.ErrDateInPast)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUseCase_Execute_InactiveEmployee(t *testing.T) {
	f := newFixture()
	f.uc.employeeRepo = staticEmployees{inactive: true}
	f.repo.On("GetByID", mock.Anything, int64(5)).Return(reservation(5, 7, "10:00", "11:00", domain.StatusConfirmed), nil)

	_, err := f.uc.Execute(context.Background(), &Request{
		ReservationID: 5, Actor: owner(), Date: testDate, StartTime: types.MustTimeString("13:00"),
	})

	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.repo.AssertNotCalled(t, "LockEmployeeDay", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.cache.dates)
	assert.Empty(t, f.sink.events)
}
