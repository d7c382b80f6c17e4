package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PublicationType classifies a publication for listing logic.
type PublicationType string

const (
	// TypeReportage is a photo reportage.
	TypeReportage PublicationType = "publi"
	// TypeAgroEcho is an agro-echo post.
	TypeAgroEcho PublicationType = "agro"
)

// Valid reports whether the type is one of the two known values.
func (t PublicationType) Valid() bool {
	return t == TypeReportage || t == TypeAgroEcho
}

// PhotoList is an ordered sequence of stored photo paths, persisted as JSON
// in a TEXT column.
type PhotoList []string

// Value implements driver.Valuer.
func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		p = PhotoList{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*p = PhotoList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported photo list type %T", value)
	}
}

// Publication represents a photo-illustrated report. Rows are hard-deleted:
// delete cascades removal of the stored photo files, so a soft-deleted row
// would dangle dead paths.
type Publication struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title           string          `json:"title" gorm:"size:255;not null"`
	Type            PublicationType `json:"type" gorm:"size:10;not null;index"`
	Description     string          `json:"description" gorm:"type:text;not null"`
	Content         string          `json:"content" gorm:"type:longtext"`
	Location        string          `json:"location" gorm:"size:255"`
	EventDate       *time.Time      `json:"eventDate"`
	PhotoURLs       PhotoList       `json:"photoUrls" gorm:"type:text;not null"`
	Views           uint            `json:"views" gorm:"not null;default:0"`
	UserID          uuid.UUID       `json:"userId" gorm:"type:char(36);not null;index"`
	UserDisplayName string          `json:"userDisplayName" gorm:"size:255"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Publication) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
