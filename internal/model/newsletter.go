package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NewsletterStatus string

const (
	NewsletterStatusDraft     NewsletterStatus = "Draft"
	NewsletterStatusScheduled NewsletterStatus = "Scheduled"
	NewsletterStatusSent      NewsletterStatus = "Sent"
	NewsletterStatusFailed    NewsletterStatus = "Failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s NewsletterStatus) IsTerminal() bool {
	return s == NewsletterStatusSent || s == NewsletterStatusFailed
}

// RecipientSummary is the aggregate outcome of a dispatch run.
type RecipientSummary struct {
	Total      int `json:"total" gorm:"default:0"`
	Successful int `json:"successful" gorm:"default:0"`
	Failed     int `json:"failed" gorm:"default:0"`
}

type Newsletter struct {
	gorm.Model
	Title   string                      `json:"title" gorm:"not null"`
	Subject string                      `json:"subject" gorm:"not null"`
	Content string                      `json:"content" gorm:"type:text"`
	Images  datatypes.JSONSlice[string] `json:"images"`
	Status  NewsletterStatus            `json:"status" gorm:"size:20;default:'Draft';index:idx_newsletters_due"`
	SentAt  *time.Time                  `json:"sent_at"`

	// Checked-and-set atomically before a send loop starts so that two
	// concurrent dispatch calls cannot both run a full pass.
	DispatchInProgress bool `json:"-" gorm:"default:false"`

	Recipients RecipientSummary `json:"recipients" gorm:"embedded;embeddedPrefix:recipients_"`

	ScheduledFor *time.Time                  `json:"scheduled_for" gorm:"index:idx_newsletters_due"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Category     string                      `json:"category" gorm:"size:100"`
	Description  string                      `json:"description"`
}

func (Newsletter) TableName() string {
	return "newsletters"
}
