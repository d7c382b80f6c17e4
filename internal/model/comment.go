package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment length bounds enforced on creation.
const (
	CommentAuthorNameMax = 100
	CommentContentMax    = 2000
)

// Comment is visitor-submitted discussion attached to a publication. No
// identity is recorded; moderation is deletion by an admin.
type Comment struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	PublicationID uuid.UUID `json:"publicationId" gorm:"type:char(36);not null;index"`
	AuthorName    string    `json:"authorName" gorm:"size:100;not null"`
	Content       string    `json:"content" gorm:"size:2000;not null"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`

	// Relations
	Publication Publication `json:"-" gorm:"foreignKey:PublicationID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
