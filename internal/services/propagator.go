package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/quillside/backend/internal/store"
)

// Propagator is the single writer of the denormalized status and privacy
// copies. Every write path that changes User.status or Blog.private goes
// through here so the source of truth and all cached copies move in one
// atomic transaction. No other code may touch owner.status, author.status or
// blog.private.
type Propagator struct {
	store store.Store
}

func NewPropagator(s store.Store) *Propagator {
	return &Propagator{store: s}
}

// PropagateUserStatus sets the user's status and rewrites the status copy on
// every blog, post and comment the user owns, all in one transaction. Readers
// either see the old status everywhere or the new status everywhere.
func (p *Propagator) PropagateUserStatus(ctx context.Context, userID, status string) error {
	err := p.store.WithTransaction(ctx, func(ctx context.Context) error {
		return p.ApplyUserStatus(ctx, userID, status)
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: propagate status: %v", ErrTransactionFailed, err)
	}
	return nil
}

// ApplyUserStatus performs the status rewrite against ctx, which must belong
// to an open transaction. Split out so the moderation dispatcher can combine
// propagation with report settlement in a single commit.
func (p *Propagator) ApplyUserStatus(ctx context.Context, userID, status string) error {
	if _, err := p.store.Users().FindByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := p.store.Users().UpdateStatus(ctx, userID, status); err != nil {
		return err
	}
	if err := p.store.Blogs().UpdateOwnerStatus(ctx, userID, status); err != nil {
		return err
	}
	if err := p.store.Posts().UpdateAuthorStatus(ctx, userID, status); err != nil {
		return err
	}
	if err := p.store.Comments().UpdateAuthorStatus(ctx, userID, status); err != nil {
		return err
	}

	log.Printf("[propagator] user=%s status=%s", userID, status)
	return nil
}

// PropagateBlogPrivacy flips a blog's private flag and rewrites the
// blog.private copy on every post in that blog, in one transaction.
func (p *Propagator) PropagateBlogPrivacy(ctx context.Context, blogID string, private bool) error {
	err := p.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := p.store.Blogs().Update(ctx, blogID, map[string]interface{}{"private": private}); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrBlogNotFound
			}
			return err
		}
		return p.store.Posts().UpdateBlogPrivate(ctx, blogID, private)
	})
	if err != nil {
		if errors.Is(err, ErrBlogNotFound) {
			return err
		}
		return fmt.Errorf("%w: propagate privacy: %v", ErrTransactionFailed, err)
	}

	log.Printf("[propagator] blog=%s private=%v", blogID, private)
	return nil
}
