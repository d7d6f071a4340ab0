package models

import (
	"time"
)

// JobEmail is one message pulled from the mailbox, flattened into the
// all_emails table the tracker queries.
//
// ImapID is the sequence number the server assigned at fetch time. The
// server is free to reassign it after an expunge or in a later session, so
// it is not a primary key on its own: duplicates are fenced by a composite
// unique index over (imap_id, subject, sender, send_date), created in the
// migration step with MySQL prefix lengths.
type JobEmail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImapID    string    `gorm:"column:imap_id;size:255;not null" json:"imap_id"`
	Subject   string    `gorm:"size:500" json:"subject"`
	Sender    string    `gorm:"size:255" json:"sender"`
	Recipient string    `gorm:"size:255" json:"recipient"`
	SendDate  string    `gorm:"column:send_date;size:100" json:"send_date"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name the query tooling was written against.
func (JobEmail) TableName() string {
	return "all_emails"
}
