package redisstore

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCmdable struct {
	data   map[string]string
	zsets  map[string]map[string]float64
	getErr error
	// zaddFailures fails that many ZADD calls before succeeding.
	zaddFailures int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:  make(map[string]string),
		zsets: make(map[string]map[string]float64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out = append(out, v)
		} else {
			out = append(out, nil)
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = string(value.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) SetXX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; !exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = string(value.([]byte))
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) ZAddNX(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	if m.zaddFailures > 0 {
		m.zaddFailures--
		return redis.NewIntResult(0, errors.New("connection reset"))
	}
	set, ok := m.zsets[key]
	if !ok {
		set = make(map[string]float64)
		m.zsets[key] = set
	}
	var added int64
	for _, z := range members {
		member := z.Member.(string)
		if _, exists := set[member]; exists {
			continue
		}
		set[member] = z.Score
		added++
	}
	return redis.NewIntResult(added, nil)
}

func (m *mockCmdable) ZRange(_ context.Context, key string, _, _ int64) *redis.StringSliceCmd {
	set := m.zsets[key]
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool { return set[members[i]] < set[members[j]] })
	return redis.NewStringSliceResult(members, nil)
}

func record(orderID int64, at time.Time) *domrecon.Record {
	return &domrecon.Record{
		OrderID:           orderID,
		OrderNumber:       "num",
		ProductID:         3,
		Quantity:          2,
		ExpectedInventory: 5,
		TargetInventory:   3,
		Cause:             "timeout",
		Status:            domrecon.StatusPending,
		RecordedAt:        at,
	}
}

func TestSaveIsInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	repo := newRepository(mock, "shop", nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Save(ctx, record(7, at))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, mock.data, "shop:reconciliation:7")
	assert.Contains(t, mock.zsets["shop:reconciliation:index"], "7")

	created, err = repo.Save(ctx, record(7, at.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.RecordedAt.Equal(at))
	assert.Equal(t, 3, got.TargetInventory)
	assert.Equal(t, domrecon.StatusPending, got.Status)
}

func TestSaveRepairsIndexOnRedelivery(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.zaddFailures = 1
	repo := newRepository(mock, "shop", nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := repo.Save(ctx, record(7, at))
	require.Error(t, err)
	assert.True(t, created)
	assert.Empty(t, mock.zsets["shop:reconciliation:index"])

	created, err = repo.Save(ctx, record(7, at.Add(time.Minute)))
	require.NoError(t, err)
	assert.False(t, created)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].OrderID)
	assert.True(t, list[0].RecordedAt.Equal(at))

	_, err = repo.Save(ctx, record(7, at.Add(time.Hour)))
	require.NoError(t, err)
	assert.Len(t, mock.zsets["shop:reconciliation:index"], 1)
}

func TestGetMissingAndFailing(t *testing.T) {
	mock := newMockCmdable()
	repo := newRepository(mock, "", nil)

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domrecon.ErrNotFound)

	mock.getErr = errors.New("i/o timeout")
	_, err = repo.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domrecon.ErrNotFound)
}

func TestListAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(newMockCmdable(), "shop", nil)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := repo.Save(ctx, record(2, at.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Save(ctx, record(1, at))
	require.NoError(t, err)

	rec, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, rec.Resolve("restocked", at.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, rec))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].OrderID)
	assert.Equal(t, domrecon.StatusResolved, list[1].Status)
	require.NotNil(t, list[1].ResolvedAt)
	assert.Equal(t, "restocked", list[1].Note)

	assert.ErrorIs(t, repo.Update(ctx, record(9, at)), domrecon.ErrNotFound)
}

func TestDefaultPrefix(t *testing.T) {
	repo := newRepository(newMockCmdable(), " : ", nil)
	assert.Equal(t, "storefront:reconciliation:4", repo.recordKey(4))
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}
