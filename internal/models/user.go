package models

import "time"

// Account status values. User.Status is the source of truth; blogs, posts and
// comments carry denormalized copies that must only be rewritten by the
// propagator.
const (
	StatusGood       = "Good"
	StatusRestricted = "Restricted"
	StatusBanned     = "Banned"
)

// Account types.
const (
	AccountAdmin     = "Admin"
	AccountModerator = "Moderator"
	AccountCommenter = "Commenter"
	AccountBlogger   = "Blogger"
)

// ValidStatus reports whether s is a recognized account status.
func ValidStatus(s string) bool {
	switch s {
	case StatusGood, StatusRestricted, StatusBanned:
		return true
	}
	return false
}

// ValidAccountType reports whether t is a recognized account type.
func ValidAccountType(t string) bool {
	switch t {
	case AccountAdmin, AccountModerator, AccountCommenter, AccountBlogger:
		return true
	}
	return false
}

type User struct {
	ID             string    `json:"id,omitempty"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	Status         string    `json:"status"`
	AccountType    string    `json:"account_type"`
	Public         bool      `json:"public"`
	PasswordHash   string    `json:"-"`
	AccountCreated time.Time `json:"account_created"`
}

// Redacted returns a copy safe to show to other users: the id is never
// exposed, and name/email are stripped unless the profile is public.
func (u User) Redacted() User {
	out := u
	out.ID = ""
	out.PasswordHash = ""
	if !u.Public {
		out.FirstName = ""
		out.LastName = ""
		out.Email = ""
	}
	return out
}

type RegisterRequest struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	AccountType     string `json:"account_type"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Must supply a username"
	}
	if r.FirstName == "" {
		errors["first_name"] = "First name is a required field"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is a required field"
	}
	if r.Email == "" {
		errors["email"] = "Must provide a valid email address"
	}
	// Only Commenter and Blogger accounts can be self-registered.
	if r.AccountType != AccountCommenter && r.AccountType != AccountBlogger {
		errors["account_type"] = "Unrecognized account type"
	}
	if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	} else if r.ConfirmPassword != r.Password {
		errors["confirm_password"] = "Passwords do not match"
	}

	return errors
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type UpdateSettingsRequest struct {
	Public *bool `json:"public"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ChangePasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.OldPassword == "" {
		errors["old_password"] = "Must enter old password"
	}
	if len(r.Password) < 8 {
		errors["password"] = "New password must be at least 8 characters"
	} else if r.ConfirmPassword != r.Password {
		errors["confirm_password"] = "Passwords do not match"
	}

	return errors
}

// UserFilter narrows moderation console user listings. Zero values mean
// "no constraint".
type UserFilter struct {
	Username      string
	FirstName     string
	LastName      string
	Email         string
	Status        string
	AccountType   string
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Page          int
}
