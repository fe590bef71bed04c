// Package redisstore keeps reconciliation records in Redis so they survive restarts.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "storefront"

type cmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	SetXX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	ZAddNX(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

type Options struct {
	URL          string
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ReconciliationRepository stores each record as JSON under
// <prefix>:reconciliation:<orderID>, indexed by a sorted set scored on RecordedAt.
type ReconciliationRepository struct {
	store  cmdable
	raw    *redis.Client
	prefix string
}

var _ domrecon.Repository = (*ReconciliationRepository)(nil)

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, opts Options) (*ReconciliationRepository, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("redis url is required")
	}
	parsed, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout > 0 {
		parsed.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		parsed.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		parsed.WriteTimeout = opts.WriteTimeout
	}
	raw := redis.NewClient(parsed)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return newRepository(raw, opts.KeyPrefix, raw), nil
}

func newRepository(store cmdable, prefix string, raw *redis.Client) *ReconciliationRepository {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &ReconciliationRepository{store: store, raw: raw, prefix: prefix}
}

func (r *ReconciliationRepository) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func (r *ReconciliationRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx).Err()
}

func (r *ReconciliationRepository) recordKey(orderID int64) string {
	return r.prefix + ":reconciliation:" + strconv.FormatInt(orderID, 10)
}

func (r *ReconciliationRepository) indexKey() string {
	return r.prefix + ":reconciliation:index"
}

func (r *ReconciliationRepository) Save(ctx context.Context, rec *domrecon.Record) (bool, error) {
	payload, err := json.Marshal(toDTO(rec))
	if err != nil {
		return false, fmt.Errorf("marshal reconciliation record: %w", err)
	}
	created, err := r.store.SetNX(ctx, r.recordKey(rec.OrderID), payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	// The index write runs on every save so a redelivery repairs a record
	// whose earlier ZADD failed.
	member := redis.Z{Score: float64(rec.RecordedAt.UnixMilli()), Member: strconv.FormatInt(rec.OrderID, 10)}
	if err := r.store.ZAddNX(ctx, r.indexKey(), member).Err(); err != nil {
		return created, fmt.Errorf("redis zadd: %w", err)
	}
	return created, nil
}

func (r *ReconciliationRepository) Get(ctx context.Context, orderID int64) (*domrecon.Record, error) {
	raw, err := r.store.Get(ctx, r.recordKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domrecon.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(raw)
}

func (r *ReconciliationRepository) List(ctx context.Context) ([]*domrecon.Record, error) {
	ids, err := r.store.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrange: %w", err)
	}
	if len(ids) == 0 {
		return []*domrecon.Record{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.prefix+":reconciliation:"+id)
	}
	values, err := r.store.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	out := make([]*domrecon.Record, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		rec, derr := decode(s)
		if derr != nil {
			return nil, derr
		}
		out = append(out, rec)
	}
	domrecon.Sort(out)
	return out, nil
}

func (r *ReconciliationRepository) Update(ctx context.Context, rec *domrecon.Record) error {
	payload, err := json.Marshal(toDTO(rec))
	if err != nil {
		return fmt.Errorf("marshal reconciliation record: %w", err)
	}
	updated, err := r.store.SetXX(ctx, r.recordKey(rec.OrderID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setxx: %w", err)
	}
	if !updated {
		return domrecon.ErrNotFound
	}
	return nil
}

type recordDTO struct {
	OrderID           int64      `json:"orderId"`
	OrderNumber       string     `json:"orderNumber"`
	UserID            int64      `json:"userId"`
	ProductID         int64      `json:"productId"`
	Quantity          int        `json:"quantity"`
	ExpectedInventory int        `json:"expectedInventory"`
	TargetInventory   int        `json:"targetInventory"`
	Cause             string     `json:"cause"`
	Status            string     `json:"status"`
	RecordedAt        time.Time  `json:"recordedAt"`
	ResolvedAt        *time.Time `json:"resolvedAt,omitempty"`
	Note              string     `json:"note,omitempty"`
}

func toDTO(r *domrecon.Record) recordDTO {
	return recordDTO{
		OrderID:           r.OrderID,
		OrderNumber:       r.OrderNumber,
		UserID:            r.UserID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		ExpectedInventory: r.ExpectedInventory,
		TargetInventory:   r.TargetInventory,
		Cause:             r.Cause,
		Status:            string(r.Status),
		RecordedAt:        r.RecordedAt,
		ResolvedAt:        r.ResolvedAt,
		Note:              r.Note,
	}
}

func decode(raw string) (*domrecon.Record, error) {
	var d recordDTO
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode reconciliation record: %w", err)
	}
	return &domrecon.Record{
		OrderID:           d.OrderID,
		OrderNumber:       d.OrderNumber,
		UserID:            d.UserID,
		ProductID:         d.ProductID,
		Quantity:          d.Quantity,
		ExpectedInventory: d.ExpectedInventory,
		TargetInventory:   d.TargetInventory,
		Cause:             d.Cause,
		Status:            domrecon.Status(d.Status),
		RecordedAt:        d.RecordedAt,
		ResolvedAt:        d.ResolvedAt,
		Note:              d.Note,
	}, nil
}
