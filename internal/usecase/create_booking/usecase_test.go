package create_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	catalogRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/catalog"
	employeeRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/employee"
	reservationRepo "github.com/m04kA/SPA-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SPA-BookingService/pkg/logger"
	"github.com/m04kA/SPA-BookingService/pkg/metrics"
	"github.com/m04kA/SPA-BookingService/pkg/ptr"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

// 2025-10-15 среда
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

// memoryStore хранилище в памяти. Транзакция эмулирует advisory-блокировку
// (мастер, дата): пока fn выполняется, другие транзакции ждут.
type memoryStore struct {
	txMu sync.Mutex

	mu           sync.Mutex
	nextID       int64
	reservations []*domain.Reservation
	overrides    []*domain.AvailabilityOverride
	locked       int

	// staleReads возвращает пустой список активных бронирований,
	// чтобы проверить срабатывание ограничения хранилища
	staleReads bool
}

func (s *memoryStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := len(s.reservations)
	s.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.reservations = s.reservations[:snapshot]
		s.mu.Unlock()
	}
	return err
}

func (s *memoryStore) LockEmployeeDay(_ context.Context, _ int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked++
	return nil
}

func (s *memoryStore) GetActiveByEmployeeAndDate(_ context.Context, employeeID int64, date time.Time) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleReads {
		return []*domain.Reservation{}, nil
	}
	return s.activeLocked(employeeID, date), nil
}

func (s *memoryStore) activeLocked(employeeID int64, date time.Time) []*domain.Reservation {
	result := make([]*domain.Reservation, 0)
	for _, r := range s.reservations {
		if r.EmployeeID == employeeID && domain.SameDate(r.Date, date) && r.IsActive() {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result
}

func (s *memoryStore) Create(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Эмуляция EXCLUDE-ограничения
	if domain.AnyOverlaps(r.Interval(), domain.ReservationIntervals(s.activeLocked(r.EmployeeID, r.Date), 0)) {
		return nil, reservationRepo.ErrOverlap
	}

	s.nextID++
	created := *r
	created.ID = s.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.reservations = append(s.reservations, &created)
	result := created
	return &result, nil
}

func (s *memoryStore) GetByEmployeeAndDate(_ context.Context, employeeID int64, date time.Time) ([]*domain.AvailabilityOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.AvailabilityOverride, 0)
	for _, o := range s.overrides {
		if o.EmployeeID == employeeID && domain.SameDate(o.Interval.Date, date) {
			result = append(result, o)
		}
	}
	return result, nil
}

type fakeEmployees struct{ employees map[int64]*domain.Employee }

func (f fakeEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	if e, ok := f.employees[id]; ok {
		return e, nil
	}
	return nil, employeeRepo.ErrEmployeeNotFound
}

type fakeCatalog struct {
	services map[int64]*domain.Service
	err      error
}

func (f fakeCatalog) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, catalogRepo.ErrServiceNotFound
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, employeeID int64, date time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, date.Format(domain.DateFormat))
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.ReservationEvent
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event domain.ReservationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fixture struct {
	store *memoryStore
	cache *recordingCache
	sink  *recordingSink
	uc    *UseCase
}

func newFixture(catalog ServiceCatalog) *fixture {
	f := &fixture{
		store: &memoryStore{},
		cache: &recordingCache{},
		sink:  &recordingSink{},
	}
	employees := fakeEmployees{employees: map[int64]*domain.Employee{
		1: {
			ID:       1,
			Name:     "Anna",
			IsActive: true,
			Schedule: domain.WorkSchedule{
				EmployeeID: 1,
				DailyStart: types.MustTimeString("09:00"),
				DailyEnd:   types.MustTimeString("17:00"),
				WorkDays:   []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			},
		},
	}}
	f.uc = NewUseCase(f.store, f.store, employees, catalog, f.store, f.cache, f.sink,
		(*metrics.Metrics)(nil), Settings{MinNoticeMinutes: 60, TxTimeout: time.Second}, logger.NewNop()).
		WithTimeProvider(fixedTime{now: testDate.AddDate(0, 0, -1).Add(12 * time.Hour)})
	return f
}

func defaultCatalog() fakeCatalog {
	return fakeCatalog{services: map[int64]*domain.Service{
		10: {ID: 10, Name: "Massage", DurationMinutes: 60, Price: 2500, IsActive: true},
		11: {ID: 11, Name: "Manicure", DurationMinutes: 30, Price: 1200, IsActive: true},
		12: {ID: 12, Name: "Archived", DurationMinutes: 30, Price: 1, IsActive: false},
	}}
}

func bookReq(serviceID int64, start string) *Request {
	return &Request{UserID: 7, EmployeeID: 1, ServiceID: serviceID, Date: testDate, StartTime: types.MustTimeString(start)}
}

func TestUseCase_Execute_CreatesPendingReservation(t *testing.T) {
	f := newFixture(defaultCatalog())

	got, err := f.uc.Execute(context.Background(), &Request{
		UserID: 7, EmployeeID: 1, ServiceID: 10, Date: testDate,
		StartTime: types.MustTimeString("10:00"), Notes: ptr.Ptr("first visit"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "11:00", got.EndTime.String())
	assert.Equal(t, 2500.0, got.Price)
	assert.Equal(t, "Anna", got.EmployeeName)
	assert.Equal(t, "Massage", got.ServiceName)
	assert.Equal(t, 1, f.store.locked)
	assert.Equal(t, []string{"2025-10-15"}, f.cache.invalidated)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, domain.ActionCreated, f.sink.events[0].Action)
}

func TestUseCase_Execute_OverlapIsConflict(t *testing.T) {
	f := newFixture(defaultCatalog())
	_, err := f.uc.Execute(context.Background(), bookReq(10, "10:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), bookReq(11, "10:30"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.sink.events, 1)
}

func TestUseCase_Execute_AdjacentIsAllowed(t *testing.T) {
	f := newFixture(defaultCatalog())
	_, err := f.uc.Execute(context.Background(), bookReq(10, "10:00"))
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), bookReq(11, "11:00"))

	assert.NoError(t, err)
}

func TestUseCase_Execute_BlockIsConflict(t *testing.T) {
	f := newFixture(defaultCatalog())
	f.store.overrides = []*domain.AvailabilityOverride{{
		EmployeeID: 1,
		Interval:   domain.Interval{Date: testDate, Start: types.MustTimeString("12:00"), End: types.MustTimeString("13:00")},
		Available:  false,
	}}

	_, err := f.uc.Execute(context.Background(), bookReq(10, "11:30"))

	assert.ErrorIs(t, err, domain.ErrEmployeeUnavailable)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUseCase_Execute_OutsideWorkingHours(t *testing.T) {
	f := newFixture(defaultCatalog())

	_, err := f.uc.Execute(context.Background(), bookReq(10, "16:30"))

	assert.ErrorIs(t, err, domain.ErrEmployeeUnavailable)
}

func TestUseCase_Execute_StorageConstraintIsConflict(t *testing.T) {
	f := newFixture(defaultCatalog())
	_, err := f.uc.Execute(context.Background(), bookReq(10, "10:00"))
	require.NoError(t, err)
	f.store.staleReads = true

	_, err = f.uc.Execute(context.Background(), bookReq(10, "10:00"))

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestUseCase_Execute_CancelledReservationFreesInterval(t *testing.T) {
	f := newFixture(defaultCatalog())
	_, err := f.uc.Execute(context.Background(), bookReq(10, "14:00"))
	require.NoError(t, err)

	f.store.reservations[0].Status = domain.StatusCancelled

	_, err = f.uc.Execute(context.Background(), bookReq(10, "14:00"))
	assert.NoError(t, err)
}

func TestUseCase_Execute_ConcurrentBookingRace(t *testing.T) {
	f := newFixture(defaultCatalog())

	const attempts = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Execute(context.Background(), bookReq(10, "10:00"))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, f.store.activeLocked(1, testDate), 1)
}

func TestUseCase_Execute_CommittedReservationsNeverOverlap(t *testing.T) {
	f := newFixture(defaultCatalog())
	starts := []string{"09:00", "09:30", "10:00", "10:15", "11:00", "11:30", "12:00", "12:45", "13:00", "15:30", "16:00"}

	var wg sync.WaitGroup
	for _, s := range starts {
		for _, serviceID := range []int64{10, 11} {
			wg.Add(1)
			go func(start string, serviceID int64) {
				defer wg.Done()
				_, _ = f.uc.Execute(context.Background(), bookReq(serviceID, start))
			}(s, serviceID)
		}
	}
	wg.Wait()

	active := f.store.activeLocked(1, testDate)
	require.NotEmpty(t, active)
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			assert.False(t, active[i].Interval().Overlaps(active[j].Interval()),
				"%s overlaps %s", active[i].Interval(), active[j].Interval())
		}
	}
}

func TestUseCase_Execute_ServiceNotFound(t *testing.T) {
	f := newFixture(defaultCatalog())

	_, err := f.uc.Execute(context.Background(), bookReq(99, "10:00"))
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Execute(context.Background(), bookReq(12, "10:00"))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUseCase_Execute_EmployeeNotFound(t *testing.T) {
	f := newFixture(defaultCatalog())
	req := bookReq(10, "10:00")
	req.EmployeeID = 2

	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUseCase_Execute_CatalogStorageError(t *testing.T) {
	f := newFixture(fakeCatalog{err: errors.New("pq: relation does not exist")})

	_, err := f.uc.Execute(context.Background(), bookReq(10, "10:00"))

	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	f := newFixture(defaultCatalog())

	tests := []struct {
		name string
		req  *Request
	}{
		{"no user", &Request{EmployeeID: 1, ServiceID: 10, Date: testDate, StartTime: types.MustTimeString("10:00")}},
		{"no employee", &Request{UserID: 7, ServiceID: 10, Date: testDate, StartTime: types.MustTimeString("10:00")}},
		{"no date", &Request{UserID: 7, EmployeeID: 1, ServiceID: 10, StartTime: types.MustTimeString("10:00")}},
		{"past date", &Request{UserID: 7, EmployeeID: 1, ServiceID: 10, Date: testDate.AddDate(0, 0, -2), StartTime: types.MustTimeString("10:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Zero(t, f.store.locked, "invalid input must not reach storage")
}

func TestUseCase_Execute_PastEndOfDay(t *testing.T) {
	f := newFixture(defaultCatalog())

	_, err := f.uc.Execute(context.Background(), bookReq(10, "23:30"))

	assert.ErrorIs(t, err, domain.ErrPastEndOfDay)
}

func TestUseCase_Execute_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(defaultCatalog())
	f.sink.err = errors.New("broker unreachable")

	got, err := f.uc.Execute(context.Background(), bookReq(10, "10:00"))

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
}

func TestUseCase_Execute_TxTimeoutRollsBack(t *testing.T) {
	f := newFixture(defaultCatalog())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, bookReq(10, "10:00"))

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Empty(t, f.sink.events)
	assert.Empty(t, f.store.reservations)
}
