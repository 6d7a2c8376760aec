package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// NotificationView 通知 + 触发者摘要
type NotificationView struct {
	model.Notification
	Actor model.AuthorSummary `json:"actor"`
}

// NotificationService 站内通知。Notify 尽力而为：通知失败不影响
// 触发它的业务操作
type NotificationService interface {
	Notify(ctx context.Context, kind, userID, actorID string, postID, commentID *string)
	List(ctx context.Context, userID string, page, limit int) ([]*NotificationView, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository) NotificationService {
	return &notificationService{notifications: notifications, users: users}
}

func (s *notificationService) Notify(ctx context.Context, kind, userID, actorID string, postID, commentID *string) {
	// 自己触发自己的动作不通知
	if userID == actorID {
		return
	}
	n := &model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		ActorID:   actorID,
		Kind:      kind,
		PostID:    postID,
		CommentID: commentID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		logger.Warn("create notification failed",
			zap.String("kind", kind), zap.String("user", userID), zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userID string, page, limit int) ([]*NotificationView, error) {
	page = normalizePage(page)
	limit = normalizeLimit(limit, 10, 100)
	items, err := s.notifications.List(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, n := range items {
		if _, ok := seen[n.ActorID]; !ok {
			seen[n.ActorID] = struct{}{}
			actorIDs = append(actorIDs, n.ActorID)
		}
	}
	actors, err := s.users.ListByIDs(ctx, actorIDs)
	if err != nil {
		return nil, err
	}
	actorByID := make(map[string]model.AuthorSummary, len(actors))
	for _, u := range actors {
		actorByID[u.ID] = u.Summary()
	}

	res := make([]*NotificationView, 0, len(items))
	for _, n := range items {
		res = append(res, &NotificationView{Notification: *n, Actor: actorByID[n.ActorID]})
	}
	return res, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}
