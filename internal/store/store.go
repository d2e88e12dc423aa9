package store

import (
	"context"
	"errors"

	"github.com/quillside/backend/internal/models"
)

// ErrNotFound is returned by lookups that match no document.
var ErrNotFound = errors.New("store: not found")

// PageSize is the fixed page size for paginated listings.
const PageSize = 20

// Store exposes the five collections plus the transaction primitive. All
// correlated multi-document edits to denormalized fields must run inside
// WithTransaction so readers never observe a partial propagation.
type Store interface {
	Users() UserRepo
	Blogs() BlogRepo
	Posts() PostRepo
	Comments() CommentRepo
	Reports() ReportRepo

	// WithTransaction runs fn inside one atomic transaction. Repo calls made
	// with the context passed to fn ride that transaction. If fn returns an
	// error, nothing fn wrote is observable.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	Close(ctx context.Context) error
}

type UserRepo interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, set map[string]string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdatePublic(ctx context.Context, id string, public bool) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateAccountType(ctx context.Context, id, accountType string) error
	Delete(ctx context.Context, id string) error
}

type BlogRepo interface {
	Insert(ctx context.Context, b *models.Blog) error
	FindByID(ctx context.Context, id string) (*models.Blog, error)
	FindByName(ctx context.Context, name string) (*models.Blog, error)
	Find(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, error)
	Update(ctx context.Context, id string, set map[string]interface{}) error
	// UpdateOwnerStatus rewrites the denormalized owner.status copy on every
	// blog owned by ownerID. Propagator use only.
	UpdateOwnerStatus(ctx context.Context, ownerID, status string) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type PostRepo interface {
	Insert(ctx context.Context, p *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	FindByBlog(ctx context.Context, blogID string, includePrivate bool) ([]*models.Post, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	// Recent returns the newest visible posts: private posts, posts on
	// private blogs and posts by banned authors are excluded via the
	// denormalized copies.
	Recent(ctx context.Context, limit int) ([]*models.Post, error)
	// FindVisible is the public single-post read with the same visibility
	// filter as Recent.
	FindVisible(ctx context.Context, id string) (*models.Post, error)
	// UpdateAuthorStatus rewrites author.status on every post authored by
	// authorID. Propagator use only.
	UpdateAuthorStatus(ctx context.Context, authorID, status string) error
	// UpdateBlogPrivate rewrites blog.private on every post in blogID.
	// Blog-edit propagation use only.
	UpdateBlogPrivate(ctx context.Context, blogID string, private bool) error
	Delete(ctx context.Context, id string) error
	DeleteByBlog(ctx context.Context, blogID string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

type CommentRepo interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	// FindByPost lists a post's comments, excluding banned authors via the
	// denormalized author.status copy.
	FindByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error)
	// UpdateAuthorStatus rewrites author.status on every comment authored by
	// authorID. Propagator use only.
	UpdateAuthorStatus(ctx context.Context, authorID, status string) error
	Delete(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}

type ReportRepo interface {
	Insert(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	Find(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error)
	// ExistsFor reports whether reportingUser already filed against contentID.
	ExistsFor(ctx context.Context, contentID, reportingUser string) (bool, error)
	// Settle marks the report settled and writes all resolution fields in one
	// update.
	Settle(ctx context.Context, id string, res models.Resolution) error
}
