package models

import (
	"time"
)

const UserTable = "rk_users"

type UserType string

const (
	UserRenter UserType = "renter"
	UserOwner  UserType = "owner"
	UserBoth   UserType = "both"
)

func (t UserType) Valid() bool {
	switch t {
	case UserRenter, UserOwner, UserBoth:
		return true
	}
	return false
}

var UserTypes = []Option{
	{Value: string(UserRenter), Label: "Renter Only"},
	{Value: string(UserOwner), Label: "Owner Only"},
	{Value: string(UserBoth), Label: "Both Renter & Owner"},
}

// CanList reports whether the user may publish equipment.
func (t UserType) CanList() bool { return t == UserOwner || t == UserBoth }

// User 的 ID 同时作为 WebAuthn userHandle（UUID 字节）
type User struct {
	ID           string   `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string   `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string   `gorm:"size:255;not null" json:"full_name"`
	UserType     UserType `gorm:"size:16;not null;default:'renter'" json:"user_type"`
	Location     string   `gorm:"size:255" json:"location"`
	PhoneNumber  string   `gorm:"size:64" json:"phone_number"`
	Bio          string   `gorm:"type:text" json:"bio"`
	ProfileImage string   `gorm:"size:1024" json:"profile_image"`
	Verified     bool     `gorm:"not null;default:false" json:"verified"`

	LastLoginAt *time.Time `gorm:"index" json:"last_login_at,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"last_seen_at,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"-"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedDate time.Time    `gorm:"column:created_date;autoCreateTime;index" json:"created_date"`
	UpdatedAt   time.Time    `json:"-"`
	Credentials []Credential `json:"-"`
}

func (User) TableName() string { return UserTable }

// Contact is the subset of a user shown to the other party of a booking.
type Contact struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Location     string `json:"location,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
	Verified     bool   `json:"verified"`
}

func (u User) Contact() Contact {
	return Contact{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		Location:     u.Location,
		ProfileImage: u.ProfileImage,
		Verified:     u.Verified,
	}
}

// Credential 为每个注册的 Passkey 存档
type Credential struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;index" json:"user_id"`
	CredentialID    []byte    `gorm:"uniqueIndex" json:"-"`
	PublicKey       []byte    `json:"-"`
	AttestationType string    `gorm:"size:64" json:"attestation_type"`
	AAGUID          []byte    `json:"-"`
	SignCount       uint32    `json:"sign_count"`
	CloneWarning    bool      `json:"clone_warning"`
	BackupEligible  bool      `json:"backup_eligible"`
	BackupState     bool      `json:"backup_state"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	LastUsedAt *time.Time `gorm:"index" json:"last_used_at,omitempty"`
}

func (Credential) TableName() string { return "rk_credentials" }
