package domain

import (
	"errors"
	"time"
)

const MaxContentLen = 4000

var (
	ErrContentEmpty   = errors.New("content empty")
	ErrContentTooLong = errors.New("content too long")
)

type MessageID string

type Message struct {
	ID          MessageID `json:"id"`
	Content     string    `json:"content"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
	IsExpert    bool      `json:"is_expert"`
}

// NewDraft validates outgoing message content before it is sent upstream.
func NewDraft(content string) (string, error) {
	if len(content) == 0 {
		return "", ErrContentEmpty
	}
	if len(content) > MaxContentLen {
		return "", ErrContentTooLong
	}
	return content, nil
}
