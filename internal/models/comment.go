package models

import "time"

type Comment struct {
	ID       string    `json:"id"`
	BlogPost string    `json:"blog_post"`
	Author   AuthorRef `json:"author"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

func (r *CreateCommentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if l := len(r.Content); l < 1 || l > 1000 {
		errors["content"] = "Content must be between 1 and 1000 characters"
	}

	return errors
}
