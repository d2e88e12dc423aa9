package models

import "time"

// BlogRef points a post at its blog and caches the blog's private flag so
// listing queries never join through the blogs collection.
type BlogRef struct {
	Doc     string `json:"doc"`
	Private bool   `json:"private"`
}

// AuthorRef points at the authoring user and caches that user's status.
type AuthorRef struct {
	Doc    string `json:"doc"`
	Status string `json:"status"`
}

type Post struct {
	ID      string    `json:"id"`
	Blog    BlogRef   `json:"blog"`
	Author  AuthorRef `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Private bool      `json:"private"`
	Created time.Time `json:"created"`
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Private bool   `json:"private"`
}

func (r *CreatePostRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if l := len(r.Title); l < 1 || l > 50 {
		errors["title"] = "Title must be between 1 and 50 characters"
	}
	if l := len(r.Content); l < 1 || l > 5000 {
		errors["content"] = "Content must be between 1 and 5000 characters"
	}

	return errors
}
