package services

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrPostNotFound    = errors.New("blog post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrContentNotFound = errors.New("content not found")

	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("account with this email already exists")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("forbidden")

	ErrDuplicateReport = errors.New("report already filed against this content")
	ErrAlreadySettled  = errors.New("report already settled")

	// ErrTransactionFailed wraps an atomic commit failure. The whole logical
	// operation was rolled back; callers may retry.
	ErrTransactionFailed = errors.New("transaction failed")
)
