package database

import "time"

// User is one signed-in Google account and its role.
type User struct {
	UID       string    `gorm:"primaryKey;type:varchar(128)"`
	Email     string    `gorm:"index;not null"`
	Name      string    `gorm:"not null"`
	Picture   string    `gorm:"type:text"`
	Role      string    `gorm:"type:varchar(16);not null;default:user"`
	LastLogin time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invitation keeps the template record as JSON text. Style is copied out of
// the JSON so listings do not have to decode it.
type Invitation struct {
	ID           string `gorm:"primaryKey;type:varchar(32)"`
	CustomerName string `gorm:"not null"`
	OwnerUID     string `gorm:"index;type:varchar(128)"`
	OwnerEmail   string `gorm:"index"`
	Style        string `gorm:"type:varchar(32)"`
	Data         string `gorm:"type:text;not null"`
	Size         int64  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Draft is the autosave target of an edit session that has not been saved
// under a customer name yet. ID is the edit session id.
type Draft struct {
	ID           string `gorm:"primaryKey;type:varchar(64)"`
	OwnerUID     string `gorm:"index;type:varchar(128)"`
	InvitationID string `gorm:"type:varchar(32)"`
	Data         string `gorm:"type:text;not null"`
	Size         int64  `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RSVP struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	InvitationID  string `gorm:"index;type:varchar(32);not null"`
	GuestName     string `gorm:"not null"`
	GuestRelation string
	GuestWishes   string `gorm:"type:text"`
	Attendance    string `gorm:"type:varchar(32);not null"`
	CreatedAt     time.Time
}

func (RSVP) TableName() string { return "rsvps" }
