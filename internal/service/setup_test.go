package service

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/model"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: 每个连接一个库，限制单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{}, &model.Post{}, &model.Comment{}, &model.Reaction{},
		&model.Follow{}, &model.Fan{}, &model.HiddenPost{}, &model.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	u := &model.User{
		ID:       id,
		FullName: "user " + id,
		Email:    id + "@example.com",
		Password: "p",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedPost(t *testing.T, db *gorm.DB, id, authorID, privacy string, createdAt time.Time) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:       id,
		AuthorID: authorID,
		Type:     model.PostTypeOriginal,
		Privacy:  privacy,
		Content:  "post " + id,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
	// CreatedAt 由 gorm 填充，回写成测试指定的时间
	if err := db.Model(p).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate post %s: %v", id, err)
	}
	p.CreatedAt = createdAt
	return p
}

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		AffinityBonus:        4,
		PopularityBonus:      3,
		FreshnessBonus:       2,
		FreshnessWindowHours: 24,
		PopularityThreshold:  100,
		EngagementThreshold:  10,
		DecayBase:            2,
		DecayExponent:        1.5,
		DefaultPageSize:      10,
		MaxPageSize:          100,
	}
}
