package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func TestFanReplicatorReplicates(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	db := setupServiceDB(t)
	fanRepo := repository.NewFanRepository(db)
	r := NewFanReplicator(fanRepo, 100)
	stop := r.Start(2)

	r.EnqueueAdd("celebrity", "fan1")
	r.EnqueueAdd("celebrity", "fan2")

	require.Eventually(t, func() bool {
		var n int64
		_ = db.Model(&model.Fan{}).Where("user_id = ?", "celebrity").Count(&n).Error
		return n == 2
	}, 2*time.Second, 10*time.Millisecond)

	r.EnqueueRemove("celebrity", "fan1")
	require.Eventually(t, func() bool {
		var n int64
		_ = db.Model(&model.Fan{}).Where("user_id = ?", "celebrity").Count(&n).Error
		return n == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, stop(context.Background()))
}

func TestFanReplicatorDrainsQueueOnStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	db := setupServiceDB(t)
	fanRepo := repository.NewFanRepository(db)
	r := NewFanReplicator(fanRepo, 1000)
	stop := r.Start(1)

	const jobs = 200
	for i := 0; i < jobs; i++ {
		r.EnqueueAdd("celebrity", fmt.Sprintf("fan%03d", i))
	}
	// 停止前必须排空队列
	require.NoError(t, stop(context.Background()))

	var n int64
	require.NoError(t, db.Model(&model.Fan{}).Where("user_id = ?", "celebrity").Count(&n).Error)
	assert.Equal(t, int64(jobs), n)
	assert.Equal(t, 0, r.QueueLen())
}

func TestFanReplicatorStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))

	db := setupServiceDB(t)
	r := NewFanReplicator(repository.NewFanRepository(db), 10)
	stop := r.Start(1)
	require.NoError(t, stop(context.Background()))
	require.NoError(t, stop(context.Background()))
}
