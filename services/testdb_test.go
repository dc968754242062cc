package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"gymdesk-backend/config"
	"gymdesk-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedMember(t *testing.T, db *gorm.DB, name string) *models.Member {
	t.Helper()
	svc := NewMemberService(db)
	svc.now = clock
	m, err := svc.Create(context.Background(), MemberInput{Name: name, Contact1: "9876543210"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func seedProduct(t *testing.T, db *gorm.DB, p models.Product) *models.Product {
	t.Helper()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return &p
}

func reloadMember(t *testing.T, db *gorm.DB, m *models.Member) *models.Member {
	t.Helper()
	var out models.Member
	if err := db.First(&out, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("reload member: %v", err)
	}
	return &out
}
