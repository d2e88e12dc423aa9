package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
	"github.com/quillside/backend/internal/store/memstore"
)

type moderationFixture struct {
	store   *memstore.MemStore
	service *ModerationService
	author  *models.User
	post    *models.Post
	comment *models.Comment
}

func setupModeration(t *testing.T) *moderationFixture {
	s := memstore.New()
	p := NewPropagator(s)

	author := seedUser(t, s, "alice", models.AccountBlogger)
	blog := seedBlog(t, s, author, "alices-blog")
	post := seedPost(t, s, blog, author, "p1")
	commenter := seedUser(t, s, "carol", models.AccountCommenter)
	comment := seedComment(t, s, post, commenter, "c1")

	return &moderationFixture{
		store:   s,
		service: NewModerationService(s, p),
		author:  author,
		post:    post,
		comment: comment,
	}
}

func TestModerateContent(t *testing.T) {
	ctx := context.Background()

	t.Run("ban settles the report and propagates", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-dana"))

		u, err := f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, u.Status)

		post, err := f.store.Posts().FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, post.Author.Status)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.True(t, r.Settled)
		require.NotNil(t, r.Resolution)
		assert.Equal(t, models.StatusBanned, r.Resolution.ActionTaken)
		assert.Equal(t, "mod-dana", r.Resolution.RespondingModerator)
		assert.False(t, r.Resolution.DateOfAction.IsZero())
	})

	t.Run("restrict records the restricted status", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionRestrict, "mod-dana"))

		u, err := f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRestricted, u.Status)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		require.NotNil(t, r.Resolution)
		assert.Equal(t, models.StatusRestricted, r.Resolution.ActionTaken)
	})

	t.Run("delete removes the comment", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentComment, "c1", "u-alice", "carol")

		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionDelete, "mod-dana"))

		_, err := f.store.Comments().FindByID(ctx, "c1")
		assert.ErrorIs(t, err, store.ErrNotFound)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		require.NotNil(t, r.Resolution)
		assert.Equal(t, models.ActionTakenDelete, r.Resolution.ActionTaken)
	})

	t.Run("deleting a post leaves its comments", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionDelete, "mod-dana"))

		_, err := f.store.Posts().FindByID(ctx, "p1")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// The comment is orphaned, not deleted.
		_, err = f.store.Comments().FindByID(ctx, "c1")
		assert.NoError(t, err)
	})

	t.Run("settled reports cannot be settled again", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionRestrict, "mod-dana"))
		err := f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-erin")
		assert.ErrorIs(t, err, ErrAlreadySettled)

		// The first resolution stands.
		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRestricted, r.Resolution.ActionTaken)
		assert.Equal(t, "mod-dana", r.Resolution.RespondingModerator)

		u, err := f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRestricted, u.Status)
	})

	t.Run("concurrent dispatches settle exactly once", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-dana")
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, ErrAlreadySettled)
			}
		}
		assert.Equal(t, 1, won)
	})

	t.Run("unknown report", func(t *testing.T) {
		f := setupModeration(t)
		err := f.service.ModerateContent(ctx, "r-none", models.ActionBan, "mod-dana")
		assert.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("reported user no longer exists", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "ghost")
		err := f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-dana")
		assert.ErrorIs(t, err, ErrUserNotFound)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, r.Settled)
	})

	t.Run("reported content no longer exists", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentComment, "c-gone", "u-alice", "carol")
		err := f.service.ModerateContent(ctx, "r1", models.ActionDelete, "mod-dana")
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("unrecognized action is rejected up front", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")
		err := f.service.ModerateContent(ctx, "r1", "obliterate", "mod-dana")
		require.Error(t, err)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, r.Settled)
	})

	t.Run("commit failure leaves the report open and status untouched", func(t *testing.T) {
		f := setupModeration(t)
		seedReport(t, f.store, "r1", models.ContentBlogPost, "p1", "u-carol", "alice")

		// Enough budget for the propagation writes but not the settlement.
		f.store.FailAfterWrites(3)
		err := f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-dana")
		f.store.FailAfterWrites(-1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransactionFailed)

		r, err := f.store.Reports().FindByID(ctx, "r1")
		require.NoError(t, err)
		assert.False(t, r.Settled)
		assert.Nil(t, r.Resolution)

		u, err := f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, u.Status)

		// And a retry on the still-open report succeeds.
		require.NoError(t, f.service.ModerateContent(ctx, "r1", models.ActionBan, "mod-dana"))
		u, err = f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, u.Status)
	})
}

func TestModerateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("status change runs the full propagation", func(t *testing.T) {
		f := setupModeration(t)

		err := f.service.ModerateUser(ctx, models.AccountModerator, f.author.ID,
			models.ModerateUserRequest{AccountStatus: models.StatusRestricted})
		require.NoError(t, err)

		post, err := f.store.Posts().FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRestricted, post.Author.Status)
	})

	t.Run("account type change is admin only", func(t *testing.T) {
		f := setupModeration(t)

		err := f.service.ModerateUser(ctx, models.AccountModerator, f.author.ID,
			models.ModerateUserRequest{AccountType: models.AccountCommenter})
		assert.ErrorIs(t, err, ErrForbidden)

		err = f.service.ModerateUser(ctx, models.AccountAdmin, f.author.ID,
			models.ModerateUserRequest{AccountType: models.AccountCommenter})
		require.NoError(t, err)

		u, err := f.store.Users().FindByID(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AccountCommenter, u.AccountType)
	})

	t.Run("account deletion is admin only and cascades", func(t *testing.T) {
		f := setupModeration(t)

		err := f.service.ModerateUser(ctx, models.AccountModerator, f.author.ID,
			models.ModerateUserRequest{DeleteUser: true})
		assert.ErrorIs(t, err, ErrForbidden)

		err = f.service.ModerateUser(ctx, models.AccountAdmin, f.author.ID,
			models.ModerateUserRequest{DeleteUser: true})
		require.NoError(t, err)

		_, err = f.store.Users().FindByID(ctx, f.author.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.store.Blogs().FindByID(ctx, "b-alices-blog")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.store.Posts().FindByID(ctx, "p1")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// Carol's comment was on Alice's post but belongs to Carol; it stays.
		_, err = f.store.Comments().FindByID(ctx, "c1")
		assert.NoError(t, err)
	})

	t.Run("deleting an unknown user", func(t *testing.T) {
		f := setupModeration(t)
		err := f.service.ModerateUser(ctx, models.AccountAdmin, "u-ghost",
			models.ModerateUserRequest{DeleteUser: true})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetContent(t *testing.T) {
	ctx := context.Background()

	t.Run("moderators see content the public cannot", func(t *testing.T) {
		f := setupModeration(t)
		p := NewPropagator(f.store)
		require.NoError(t, p.PropagateUserStatus(ctx, f.author.ID, models.StatusBanned))

		// Public read path hides the banned author's post.
		_, err := f.store.Posts().FindVisible(ctx, "p1")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// The moderator view does not.
		got, err := f.service.GetContent(ctx, models.ContentBlogPost, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.ContentBlogPost, got.ContentType)
	})

	t.Run("unknown content", func(t *testing.T) {
		f := setupModeration(t)
		_, err := f.service.GetContent(ctx, models.ContentComment, "c-none")
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}
