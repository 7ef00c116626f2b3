package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerHour = 60
	// EndOfDayMinutes соответствует "24:00" - допустимо только как конец интервала
	EndOfDayMinutes = 24 * minutesPerHour
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time string format")
	ErrTimeOutOfRange    = errors.New("time is out of day range")
)

// TimeString время суток с точностью до минуты в формате "HH:MM"
type TimeString struct {
	minutes int
}

// NewTimeStringFromString парсит строку "HH:MM" (также принимает "HH:MM:SS" из Postgres TIME)
func NewTimeStringFromString(s string) (TimeString, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 2 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	if len(parts) == 3 && strings.TrimLeft(parts[2], "0") != "" {
		// секунды не поддерживаются
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	if minutes < 0 || minutes >= minutesPerHour || hours < 0 {
		return TimeString{}, fmt.Errorf("%w: %q", ErrTimeOutOfRange, s)
	}

	total := hours*minutesPerHour + minutes
	if total > EndOfDayMinutes {
		return TimeString{}, fmt.Errorf("%w: %q", ErrTimeOutOfRange, s)
	}

	return TimeString{minutes: total}, nil
}

// MustTimeString парсит время и паникует при ошибке. Только для констант и тестов.
func MustTimeString(s string) TimeString {
	t, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTimeString берёт время суток из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*minutesPerHour + t.Minute()}
}

// NewTimeStringFromMinutes создает время из количества минут от начала суток
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes > EndOfDayMinutes {
		return TimeString{}, fmt.Errorf("%w: %d minutes", ErrTimeOutOfRange, minutes)
	}
	return TimeString{minutes: minutes}, nil
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() int {
	return t.minutes
}

func (t TimeString) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/minutesPerHour, t.minutes%minutesPerHour)
}

// AddMinutes сдвигает время. Результат за пределами [00:00, 24:00] - ошибка.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	return NewTimeStringFromMinutes(t.minutes + minutes)
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

func (t TimeString) Equal(other TimeString) bool {
	return t.minutes == other.minutes
}

// Sub возвращает разницу в минутах t - other
func (t TimeString) Sub(other TimeString) int {
	return t.minutes - other.minutes
}

// OnDate возвращает момент времени на указанную дату
func (t TimeString) OnDate(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t.minutes) * time.Minute)
}

// Scan реализует sql.Scanner для колонок TIME
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = NewTimeString(v)
	case nil:
		*t = TimeString{}
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeFormat, src)
	}
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeString) UnmarshalText(text []byte) error {
	parsed, err := NewTimeStringFromString(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
