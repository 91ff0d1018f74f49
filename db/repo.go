package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rentkit/models"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidSort = errors.New("invalid sort field")
	ErrEmailTaken  = errors.New("email already registered")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// badID reports ids Postgres would reject as malformed uuids; they can never match.
func badID(id string) bool {
	_, err := uuid.Parse(id)
	return err != nil
}

// ListOptions mirrors the entity API's list(sort, limit).
// Sort is a field name, "-" prefixed for descending.
type ListOptions struct {
	Sort  string
	Limit int
}

// orderBy resolves a sort key against the allowed columns.
func orderBy(sort string, allowed map[string]string) (string, error) {
	if sort == "" {
		return "", nil
	}
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir, sort = "DESC", sort[1:]
	}
	col, ok := allowed[sort]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}
	return col + " " + dir, nil
}

func (o ListOptions) apply(tx *gorm.DB, allowed map[string]string, fallback string) (*gorm.DB, error) {
	order, err := orderBy(o.Sort, allowed)
	if err != nil {
		return nil, err
	}
	if order == "" {
		order = fallback
	}
	if order != "" {
		tx = tx.Order(order)
	}
	if o.Limit > 0 {
		tx = tx.Limit(o.Limit)
	}
	return tx, nil
}

// Users

var userSorts = map[string]string{
	"created_date": "created_date",
	"full_name":    "full_name",
	"email":        "email",
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := r.FindUserByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if u.UserType == "" {
		u.UserType = models.UserRenter
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repo) ListUsers(ctx context.Context, opt ListOptions) ([]models.User, error) {
	tx, err := opt.apply(r.DB.WithContext(ctx), userSorts, "created_date DESC")
	if err != nil {
		return nil, err
	}
	var us []models.User
	if err := tx.Find(&us).Error; err != nil {
		return nil, err
	}
	return us, nil
}

// UsersByID loads the given users keyed by id. Unknown ids are skipped.
func (r *Repo) UsersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var us []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&us).Error; err != nil {
		return nil, err
	}
	for _, u := range us {
		out[u.ID] = u
	}
	return out, nil
}

// ProfilePatch holds the fields a user may change on their own profile.
type ProfilePatch struct {
	FullName     *string          `json:"full_name"`
	UserType     *models.UserType `json:"user_type"`
	Location     *string          `json:"location"`
	PhoneNumber  *string          `json:"phone_number"`
	Bio          *string          `json:"bio"`
	ProfileImage *string          `json:"profile_image"`
}

var ErrInvalidUserType = errors.New("invalid user type")

func (r *Repo) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*models.User, error) {
	if badID(id) {
		return nil, ErrNotFound
	}
	if p.UserType != nil && !p.UserType.Valid() {
		return nil, ErrInvalidUserType
	}
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		set(&u.FullName, p.FullName)
		set(&u.UserType, p.UserType)
		set(&u.Location, p.Location)
		set(&u.PhoneNumber, p.PhoneNumber)
		set(&u.Bio, p.Bio)
		set(&u.ProfileImage, p.ProfileImage)
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": time.Now().UTC(),
			"last_seen_at":  time.Now().UTC(),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", time.Now().UTC()).Error
}

// Credentials

func (r *Repo) AddCredential(ctx context.Context, c *models.Credential) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) LoadUserCredentials(ctx context.Context, userID string) ([]models.Credential, error) {
	var cs []models.Credential
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *Repo) UpdateCredentialCounter(ctx context.Context, credID []byte, newCount uint32, cloneWarn bool) error {
	return r.DB.WithContext(ctx).Model(&models.Credential{}).
		Where("credential_id = ?", credID).
		Updates(map[string]any{
			"sign_count":    newCount,
			"clone_warning": cloneWarn,
			"last_used_at":  time.Now().UTC(),
		}).Error
}

func (r *Repo) FindUserByCredentialID(ctx context.Context, credID []byte) (*models.User, *models.Credential, error) {
	var c models.Credential
	if err := r.DB.WithContext(ctx).Where("credential_id = ?", credID).First(&c).Error; err != nil {
		return nil, nil, notFound(err)
	}
	u, err := r.FindUserByID(ctx, c.UserID)
	if err != nil {
		return nil, nil, err
	}
	return u, &c, nil
}
