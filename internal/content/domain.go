// Package content manages the editorial items shown on the public site:
// FAQs and blog posts.
package content

import "time"

// Item kinds.
const (
	TypeFAQ  = "faq"
	TypeBlog = "blog"
)

// Item represents a stored content item.
type Item struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidType reports whether t is a known content type.
func ValidType(t string) bool {
	return t == TypeFAQ || t == TypeBlog
}
