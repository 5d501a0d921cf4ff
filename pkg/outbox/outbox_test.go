package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}))
	return conn
}

func TestEmitStoresEnvelope(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, logger.Nop())

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   12,
			Actor:         &ActorRef{UserID: 3, Role: "user"},
			Data:          map[string]any{"orderId": 12},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(12), rows[0].AggregateID)

	env, err := DecodeEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "order_created", env.EventType)
	assert.Equal(t, 1, env.Version)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, uint(3), env.Actor.UserID)
	assert.JSONEq(t, `{"orderId":12}`, string(env.Data))
}

func TestEmitRollsBackWithTransaction(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: 1}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	count, err := repo.Pending(conn, 5)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEmitValidation(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	require.Error(t, svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderCreated}))

	conn := openTestDB(t)
	require.Error(t, svc.Emit(context.Background(), conn, DomainEvent{EventType: "mystery"}))
}

func TestMarkLifecycle(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Insert(conn, models.OutboxEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uint(i),
			Payload:       "{}",
		}))
	}
	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkFailedTx(conn, rows[1].ID, errors.New(strings.Repeat("x", 2000))))
	require.NoError(t, repo.MarkTerminalTx(conn, rows[2].ID, errors.New("bad payload"), 3))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].AttemptCount)
	require.NotNil(t, rows[0].LastError)
	assert.Len(t, *rows[0].LastError, maxErrorLen)

	limited, err := repo.FetchUnpublishedForPublish(conn, 10, 1)
	require.NoError(t, err)
	assert.Empty(t, limited)
}

func TestRetentionDeletes(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	published := old.Add(time.Minute)
	rows := []models.OutboxEvent{
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: 1, Payload: "{}", PublishedAt: &published, CreatedAt: old},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: 2, Payload: "{}", AttemptCount: 5, CreatedAt: old},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: 3, Payload: "{}", CreatedAt: old},
		{EventType: enums.EventOrderCreated, AggregateType: enums.AggregateOrder, AggregateID: 4, Payload: "{}", PublishedAt: &published},
	}
	require.NoError(t, conn.Create(&rows).Error)

	dead, err := repo.Dead(conn, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, dead)

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	n, err := repo.DeletePublishedBefore(conn, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteDeadBefore(conn, cutoff, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var remaining []models.OutboxEvent
	require.NoError(t, conn.Order("aggregate_id").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, uint(3), remaining[0].AggregateID)
	assert.Equal(t, uint(4), remaining[1].AggregateID)
}
