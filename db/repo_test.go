package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"rentkit/db"
	"rentkit/db/dbtest"
	"rentkit/models"
)

func newRepo(t *testing.T) *db.Repo {
	return db.NewRepo(dbtest.New(t))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	u := &models.User{ID: "6f1c1d2e-0000-4000-8000-000000000001", Email: "  Ann@Example.COM ", FullName: "Ann"}
	require.NoError(t, repo.CreateUser(ctx, u))
	require.Equal(t, models.UserRenter, u.UserType)

	got, err := repo.FindUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	dup := &models.User{ID: "6f1c1d2e-0000-4000-8000-000000000002", Email: "ann@example.com", FullName: "Ann 2"}
	require.ErrorIs(t, repo.CreateUser(ctx, dup), db.ErrEmailTaken)

	_, err = repo.FindUserByID(ctx, "missing")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestListUsersSortAndLimit(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for _, email := range []string{"cat@example.com", "ann@example.com", "bob@example.com"} {
		dbtest.User(t, repo, email, models.UserRenter)
	}

	us, err := repo.ListUsers(ctx, db.ListOptions{Sort: "full_name"})
	require.NoError(t, err)
	require.Len(t, us, 3)
	require.Equal(t, "ann@example.com", us[0].Email)
	require.Equal(t, "cat@example.com", us[2].Email)

	us, err = repo.ListUsers(ctx, db.ListOptions{Sort: "-full_name", Limit: 2})
	require.NoError(t, err)
	require.Len(t, us, 2)
	require.Equal(t, "cat@example.com", us[0].Email)
	require.Equal(t, "bob@example.com", us[1].Email)

	_, err = repo.ListUsers(ctx, db.ListOptions{Sort: "phone_number"})
	require.ErrorIs(t, err, db.ErrInvalidSort)
}

func TestGormLoggerQuietOnMisses(t *testing.T) {
	log, hook := test.NewNullLogger()
	conn, err := db.Open(sqlite.Open(":memory:"), log)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(conn))
	repo := db.NewRepo(conn)
	hook.Reset()

	_, err = repo.FindUserByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, db.ErrNotFound)
	require.Empty(t, hook.AllEntries())

	require.Error(t, conn.Exec("SELECT * FROM no_such_table").Error)
	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	require.Contains(t, hook.LastEntry().Message, "no such table")
	require.Equal(t, "gorm", hook.LastEntry().Data["component"])
}

func TestUpdateProfile(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	u := dbtest.User(t, repo, "bob@example.com", models.UserRenter)

	owner := models.UserBoth
	loc := "York"
	got, err := repo.UpdateProfile(ctx, u.ID, db.ProfilePatch{UserType: &owner, Location: &loc})
	require.NoError(t, err)
	require.Equal(t, models.UserBoth, got.UserType)
	require.Equal(t, "York", got.Location)
	require.Equal(t, "bob@example.com", got.FullName, "untouched fields are kept")

	bad := models.UserType("admin")
	_, err = repo.UpdateProfile(ctx, u.ID, db.ProfilePatch{UserType: &bad})
	require.ErrorIs(t, err, db.ErrInvalidUserType)

	_, err = repo.UpdateProfile(ctx, "nobody", db.ProfilePatch{Location: &loc})
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestListEquipmentSortAndLimit(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := dbtest.User(t, repo, "owner@example.com", models.UserOwner)
	cheap := dbtest.Equipment(t, repo, owner.ID, "sander", 8)
	time.Sleep(5 * time.Millisecond)
	dear := dbtest.Equipment(t, repo, owner.ID, "breaker", 80)
	time.Sleep(5 * time.Millisecond)
	mid := dbtest.Equipment(t, repo, owner.ID, "saw", 25)

	all, err := repo.ListEquipment(ctx, db.EquipmentFilter{}, db.ListOptions{Sort: "-created_date"})
	require.NoError(t, err)
	require.Equal(t, []string{mid.ID, dear.ID, cheap.ID}, equipmentIDs(all))

	byPrice, err := repo.ListEquipment(ctx, db.EquipmentFilter{}, db.ListOptions{Sort: "price_per_day", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{cheap.ID, mid.ID}, equipmentIDs(byPrice))

	_, err = repo.ListEquipment(ctx, db.EquipmentFilter{}, db.ListOptions{Sort: "owner_id; DROP TABLE"})
	require.ErrorIs(t, err, db.ErrInvalidSort)

	require.Equal(t, []string{"https://cdn.example.com/saw.jpg"}, all[0].Images)
}

func equipmentIDs(items []models.Equipment) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID)
	}
	return out
}

func TestUpdateEquipmentOwnerOnly(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := dbtest.User(t, repo, "owner@example.com", models.UserOwner)
	other := dbtest.User(t, repo, "other@example.com", models.UserOwner)
	e := dbtest.Equipment(t, repo, owner.ID, "drill", 12)

	price := 14.5
	imgs := []string{"a.jpg", "b.jpg"}
	got, err := repo.UpdateEquipment(ctx, e.ID, owner.ID, db.EquipmentPatch{PricePerDay: &price, Images: &imgs}, nil)
	require.NoError(t, err)
	require.Equal(t, 14.5, got.PricePerDay)

	reloaded, err := repo.FindEquipmentByID(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, imgs, reloaded.Images)
	require.Equal(t, "drill", reloaded.Name)

	_, err = repo.UpdateEquipment(ctx, e.ID, other.ID, db.EquipmentPatch{PricePerDay: &price}, nil)
	require.ErrorIs(t, err, db.ErrNotOwner)

	_, err = repo.UpdateEquipment(ctx, "missing", owner.ID, db.EquipmentPatch{}, nil)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestToggleAvailability(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := dbtest.User(t, repo, "owner@example.com", models.UserOwner)
	e := dbtest.Equipment(t, repo, owner.ID, "drill", 12)

	got, err := repo.ToggleAvailability(ctx, e.ID, owner.ID)
	require.NoError(t, err)
	require.False(t, got.Availability)

	avail, err := repo.ListEquipment(ctx, db.EquipmentFilter{AvailableOnly: true}, db.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, avail)

	got, err = repo.ToggleAvailability(ctx, e.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, got.Availability)
}

func TestBookingStatusRules(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := dbtest.User(t, repo, "owner@example.com", models.UserOwner)
	renter := dbtest.User(t, repo, "renter@example.com", models.UserRenter)
	stranger := dbtest.User(t, repo, "x@example.com", models.UserRenter)
	e := dbtest.Equipment(t, repo, owner.ID, "drill", 20)

	b := &models.Booking{EquipmentID: e.ID, RenterID: renter.ID, OwnerID: owner.ID, StartDate: "2026-11-01", EndDate: "2026-11-03", TotalDays: 3, DailyRate: 20, Subtotal: 60, PlatformFee: 6, TotalCost: 66, OwnerEarnings: 54}
	require.NoError(t, repo.CreateBooking(ctx, b))
	require.Equal(t, models.StatusPending, b.Status)

	_, err := repo.SetBookingStatus(ctx, b.ID, renter.ID, models.StatusConfirmed)
	require.ErrorIs(t, err, db.ErrForbidden)
	_, err = repo.SetBookingStatus(ctx, b.ID, stranger.ID, models.StatusCancelled)
	require.ErrorIs(t, err, db.ErrForbidden)
	_, err = repo.SetBookingStatus(ctx, b.ID, owner.ID, "lost")
	require.ErrorIs(t, err, db.ErrInvalidStatus)

	got, err := repo.SetBookingStatus(ctx, b.ID, owner.ID, models.StatusActive)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, got.Status)

	_, err = repo.SetBookingStatus(ctx, b.ID, renter.ID, models.StatusCancelled)
	require.ErrorIs(t, err, db.ErrNotCancelable)

	got, err = repo.SetBookingStatus(ctx, b.ID, owner.ID, models.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, got.Status)

	stored, err := repo.FindBookingByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, stored.Status)
	require.Equal(t, 54.0, stored.OwnerEarnings)
}

func TestListBookingsFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	ann := dbtest.User(t, repo, "ann@example.com", models.UserBoth)
	bob := dbtest.User(t, repo, "bob@example.com", models.UserBoth)
	annTool := dbtest.Equipment(t, repo, ann.ID, "drill", 10)
	bobTool := dbtest.Equipment(t, repo, bob.ID, "ladder", 10)

	mk := func(e *models.Equipment, renter string) *models.Booking {
		b := &models.Booking{EquipmentID: e.ID, RenterID: renter, OwnerID: e.OwnerID, StartDate: "2026-11-01", EndDate: "2026-11-01", TotalDays: 1}
		require.NoError(t, repo.CreateBooking(ctx, b))
		return b
	}
	mk(bobTool, ann.ID)
	mk(annTool, bob.ID)

	party, err := repo.ListBookings(ctx, db.BookingFilter{Party: ann.ID}, db.ListOptions{})
	require.NoError(t, err)
	require.Len(t, party, 2)

	renting, err := repo.ListBookings(ctx, db.BookingFilter{RenterID: ann.ID}, db.ListOptions{})
	require.NoError(t, err)
	require.Len(t, renting, 1)
	require.Equal(t, bobTool.ID, renting[0].EquipmentID)

	scoped, err := repo.ListBookings(ctx, db.BookingFilter{Party: ann.ID, EquipmentID: annTool.ID}, db.ListOptions{})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, bob.ID, scoped[0].RenterID)

	users, err := repo.UsersByID(ctx, []string{ann.ID, bob.ID, "ghost"})
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestReviewsAndAverage(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := dbtest.User(t, repo, "owner@example.com", models.UserOwner)
	e := dbtest.Equipment(t, repo, owner.ID, "drill", 10)

	rs, err := repo.ListReviews(ctx, e.ID, db.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, db.DefaultRating, db.AverageRating(rs))

	for _, r := range []int{5, 4, 4} {
		require.NoError(t, repo.CreateReview(ctx, &models.Review{EquipmentID: e.ID, Rating: r}))
	}
	rs, err = repo.ListReviews(ctx, e.ID, db.ListOptions{})
	require.NoError(t, err)
	require.Len(t, rs, 3)
	require.InDelta(t, 4.333, db.AverageRating(rs), 0.001)
}
