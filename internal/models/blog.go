package models

import "time"

// OwnerRef is a reference to a user plus a denormalized copy of that user's
// account status at last sync. The copy's only legitimate writer is the
// propagator.
type OwnerRef struct {
	Doc    string `json:"doc"`
	Status string `json:"status"`
}

type Blog struct {
	ID          string   `json:"id"`
	Owner       OwnerRef `json:"owner"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Private     bool     `json:"private"`
	Created     time.Time `json:"created"`
}

type CreateBlogRequest struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r *CreateBlogRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if l := len(r.Name); l < 1 || l > 25 {
		errors["name"] = "Blog name must be between 1 and 25 characters"
	} else {
		for _, c := range r.Name {
			valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_'
			if !valid {
				errors["name"] = "Blog name must only contain letters, - and _"
				break
			}
		}
	}
	if l := len(r.Title); l < 1 || l > 50 {
		errors["title"] = "Blog title must be between 1 and 50 characters"
	}
	if l := len(r.Description); l < 1 || l > 500 {
		errors["description"] = "Blog description must be between 1 and 500 characters"
	}

	return errors
}

// UpdateBlogRequest carries optional edits. A non-nil Private toggles the
// blog's privacy and triggers propagation onto its posts.
type UpdateBlogRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Private     *bool   `json:"private"`
}

func (r *UpdateBlogRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil {
		if l := len(*r.Title); l < 1 || l > 50 {
			errors["title"] = "Blog title must be between 1 and 50 characters"
		}
	}
	if r.Description != nil {
		if l := len(*r.Description); l < 1 || l > 500 {
			errors["description"] = "Blog description must be between 1 and 500 characters"
		}
	}

	return errors
}

// BlogFilter narrows public blog listings.
type BlogFilter struct {
	OwnerID        string
	IncludePrivate bool
}
