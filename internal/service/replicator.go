package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

type fanAction int

const (
	fanAdd fanAction = iota + 1
	fanRemove
)

type fanJob struct {
	action fanAction
	userID string // 被关注者
	fanID  string // 粉丝
}

// FanReplicator 把 Follow 写异步冗余到 fans 表。关注事务只写 follows 与
// 计数，粉丝表允许短暂滞后；队列满时丢弃并告警，等 reconciler 兜底。
type FanReplicator struct {
	fanRepo repository.FanRepository
	ch      chan fanJob

	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once
}

func NewFanReplicator(fanRepo repository.FanRepository, queueSize int) *FanReplicator {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &FanReplicator{
		fanRepo: fanRepo,
		ch:      make(chan fanJob, queueSize),
		stop:    make(chan struct{}),
	}
}

// Start 启动 workers 个消费协程，返回停止函数；停止前先排空队列
func (r *FanReplicator) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return func(ctx context.Context) error {
		r.once.Do(func() { close(r.stop) })
		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *FanReplicator) worker() {
	defer r.wg.Done()
	for {
		select {
		case job := <-r.ch:
			r.apply(job)
		case <-r.stop:
			// 排空剩余任务再退出
			for {
				select {
				case job := <-r.ch:
					r.apply(job)
				default:
					return
				}
			}
		}
	}
}

func (r *FanReplicator) apply(job fanJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var err error
	switch job.action {
	case fanAdd:
		err = r.fanRepo.Create(ctx, job.userID, job.fanID)
	case fanRemove:
		err = r.fanRepo.Delete(ctx, job.userID, job.fanID)
	}
	if err != nil {
		logger.Error("fan replication failed",
			zap.String("user", job.userID), zap.String("fan", job.fanID), zap.Error(err))
	}
}

func (r *FanReplicator) EnqueueAdd(userID, fanID string) {
	r.enqueue(fanJob{action: fanAdd, userID: userID, fanID: fanID})
}

func (r *FanReplicator) EnqueueRemove(userID, fanID string) {
	r.enqueue(fanJob{action: fanRemove, userID: userID, fanID: fanID})
}

func (r *FanReplicator) enqueue(job fanJob) {
	select {
	case r.ch <- job:
	default:
		logger.Warn("fan replicator queue full, drop job",
			zap.String("user", job.userID), zap.String("fan", job.fanID))
	}
}

// QueueLen 当前队列长度（采样值）
func (r *FanReplicator) QueueLen() int { return len(r.ch) }
