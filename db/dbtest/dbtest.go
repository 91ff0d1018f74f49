// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rentkit/db"
	"rentkit/models"
)

// New returns a migrated in-memory database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	log, _ := test.NewNullLogger()
	conn, err := db.Open(sqlite.Open(dsn), log)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// User inserts a user with the given type.
func User(t testing.TB, repo *db.Repo, email string, typ models.UserType) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Email: email, FullName: email, UserType: typ}
	if err := repo.CreateUser(t.Context(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// Equipment inserts an available listing owned by ownerID.
func Equipment(t testing.TB, repo *db.Repo, ownerID, name string, price float64) *models.Equipment {
	t.Helper()
	e := &models.Equipment{
		OwnerID:       ownerID,
		Name:          name,
		Description:   name + " for hire",
		Category:      "power_tools",
		Condition:     models.ConditionGood,
		PricePerDay:   price,
		MinRentalDays: 1,
		MaxRentalDays: 30,
		Location:      "Leeds",
		Images:        []string{"https://cdn.example.com/" + name + ".jpg"},
		Availability:  true,
	}
	if err := repo.CreateEquipment(t.Context(), e); err != nil {
		t.Fatalf("create equipment: %v", err)
	}
	return e
}
