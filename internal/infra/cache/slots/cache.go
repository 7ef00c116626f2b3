package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SPA-BookingService/internal/domain"
	"github.com/m04kA/SPA-BookingService/pkg/types"
)

var (
	// ErrCacheMiss возвращается, когда слоты для ключа ещё не посчитаны
	ErrCacheMiss = errors.New("slots.cache: miss")
	// ErrStaleGeneration возвращается из Set, если между чтением поколения и записью
	// ключ был инвалидирован. Слоты посчитаны по устаревшим данным и не сохраняются.
	ErrStaleGeneration = errors.New("slots.cache: stale generation")
)

const (
	keyPrefix = "slots"
	genPrefix = "slots:gen"

	// счётчик поколения живёт дольше самих слотов, иначе после его истечения
	// запоздавший Set мог бы совпасть с обнулённым значением
	genTTL = 24 * time.Hour
)

// cachedSlot формат хранения одного слота в Redis
type cachedSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Cache кэш свободных слотов мастера на дату.
// Хранит hash slots:{employee}:{date}, где поле = длина слота в минутах.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key возвращает ключ hash для мастера и даты
func Key(employeeID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, employeeID, date.Format(domain.DateFormat))
}

// GenKey возвращает ключ счётчика поколения для мастера и даты
func GenKey(employeeID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", genPrefix, employeeID, date.Format(domain.DateFormat))
}

// Generation возвращает текущее поколение ключа. Отсутствующий счётчик = 0.
// Читатель берёт поколение до чтения хранилища и передаёт его в Set.
func (c *Cache) Generation(ctx context.Context, employeeID int64, date time.Time) (int64, error) {
	key := GenKey(employeeID, date)

	gen, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return gen, nil
}

// Get возвращает закэшированные слоты или ErrCacheMiss
func (c *Cache) Get(ctx context.Context, employeeID int64, date time.Time, slotLength int) ([]domain.Interval, error) {
	key := Key(employeeID, date)

	raw, err := c.client.HGet(ctx, key, strconv.Itoa(slotLength)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", key, err)
	}

	var stored []cachedSlot
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal slots for %s: %w", key, err)
	}

	day := domain.DateOnly(date)
	result := make([]domain.Interval, 0, len(stored))
	for _, s := range stored {
		start, err := types.NewTimeStringFromString(s.Start)
		if err != nil {
			return nil, fmt.Errorf("decode slot start for %s: %w", key, err)
		}
		end, err := types.NewTimeStringFromString(s.End)
		if err != nil {
			return nil, fmt.Errorf("decode slot end for %s: %w", key, err)
		}
		result = append(result, domain.Interval{Date: day, Start: start, End: end})
	}

	return result, nil
}

// Set сохраняет слоты и продлевает TTL всего hash.
// Запись выполняется только если поколение не изменилось с момента gen,
// иначе возвращается ErrStaleGeneration.
func (c *Cache) Set(ctx context.Context, employeeID int64, date time.Time, slotLength int, gen int64, slots []domain.Interval) error {
	key := Key(employeeID, date)
	genKey := GenKey(employeeID, date)

	stored := make([]cachedSlot, 0, len(slots))
	for _, s := range slots {
		stored = append(stored, cachedSlot{Start: s.Start.String(), End: s.End.String()})
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal slots for %s: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return ErrStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, strconv.Itoa(slotLength), payload)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		// Invalidate прошёл между GET и EXEC
		return fmt.Errorf("%w: %s", ErrStaleGeneration, key)
	default:
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
}

// Invalidate удаляет слоты всех длин для мастера и даты и сдвигает поколение,
// чтобы уже начатые чтения не записали устаревший результат
func (c *Cache) Invalidate(ctx context.Context, employeeID int64, date time.Time) error {
	key := Key(employeeID, date)
	genKey := GenKey(employeeID, date)

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, max(genTTL, c.ttl))
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate %s: %w", key, err)
	}
	return nil
}

// Nop кэш-заглушка, когда Redis отключён
type Nop struct{}

func (Nop) Get(context.Context, int64, time.Time, int) ([]domain.Interval, error) {
	return nil, ErrCacheMiss
}

func (Nop) Generation(context.Context, int64, time.Time) (int64, error) {
	return 0, nil
}

func (Nop) Set(context.Context, int64, time.Time, int, int64, []domain.Interval) error {
	return nil
}

func (Nop) Invalidate(context.Context, int64, time.Time) error {
	return nil
}
