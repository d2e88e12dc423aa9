package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store/memstore"
)

func TestPropagateUserStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memstore.MemStore, *Propagator, *models.User) {
		s := memstore.New()
		p := NewPropagator(s)
		author := seedUser(t, s, "alice", models.AccountBlogger)
		blog := seedBlog(t, s, author, "alices-blog")
		post := seedPost(t, s, blog, author, "p1")
		seedPost(t, s, blog, author, "p2")
		seedComment(t, s, post, author, "c1")
		return s, p, author
	}

	t.Run("rewrites every denormalized copy", func(t *testing.T) {
		s, p, author := setup(t)

		require.NoError(t, p.PropagateUserStatus(ctx, author.ID, models.StatusBanned))

		u, err := s.Users().FindByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, u.Status)

		b, err := s.Blogs().FindByID(ctx, "b-alices-blog")
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, b.Owner.Status)

		for _, id := range []string{"p1", "p2"} {
			post, err := s.Posts().FindByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.StatusBanned, post.Author.Status)
		}

		c, err := s.Comments().FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusBanned, c.Author.Status)
	})

	t.Run("only touches the target user's content", func(t *testing.T) {
		s, p, author := setup(t)
		other := seedUser(t, s, "bob", models.AccountBlogger)
		otherBlog := seedBlog(t, s, other, "bobs-blog")
		seedPost(t, s, otherBlog, other, "bob-p1")

		require.NoError(t, p.PropagateUserStatus(ctx, author.ID, models.StatusRestricted))

		b, err := s.Blogs().FindByID(ctx, "b-bobs-blog")
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, b.Owner.Status)

		post, err := s.Posts().FindByID(ctx, "bob-p1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, post.Author.Status)
	})

	t.Run("setting the same status twice is harmless", func(t *testing.T) {
		s, p, author := setup(t)

		require.NoError(t, p.PropagateUserStatus(ctx, author.ID, models.StatusRestricted))
		require.NoError(t, p.PropagateUserStatus(ctx, author.ID, models.StatusRestricted))

		u, err := s.Users().FindByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRestricted, u.Status)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, p, _ := setup(t)
		err := p.PropagateUserStatus(ctx, "u-nobody", models.StatusBanned)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("mid-transaction failure rolls everything back", func(t *testing.T) {
		s, p, author := setup(t)

		// Let the user status write and one denormalized write land, then fail.
		s.FailAfterWrites(2)
		err := p.PropagateUserStatus(ctx, author.ID, models.StatusBanned)
		s.FailAfterWrites(-1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransactionFailed)

		// Nothing moved: source of truth and every copy still read Good.
		u, err := s.Users().FindByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, u.Status)

		b, err := s.Blogs().FindByID(ctx, "b-alices-blog")
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, b.Owner.Status)

		post, err := s.Posts().FindByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, post.Author.Status)

		c, err := s.Comments().FindByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusGood, c.Author.Status)
	})
}

func TestPropagateBlogPrivacy(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memstore.MemStore, *Propagator) {
		s := memstore.New()
		p := NewPropagator(s)
		author := seedUser(t, s, "alice", models.AccountBlogger)
		blog := seedBlog(t, s, author, "alices-blog")
		seedPost(t, s, blog, author, "p1")
		seedPost(t, s, blog, author, "p2")
		return s, p
	}

	t.Run("flips the flag on blog and posts together", func(t *testing.T) {
		s, p := setup(t)

		require.NoError(t, p.PropagateBlogPrivacy(ctx, "b-alices-blog", true))

		b, err := s.Blogs().FindByID(ctx, "b-alices-blog")
		require.NoError(t, err)
		assert.True(t, b.Private)

		for _, id := range []string{"p1", "p2"} {
			post, err := s.Posts().FindByID(ctx, id)
			require.NoError(t, err)
			assert.True(t, post.Blog.Private)
		}
	})

	t.Run("hidden posts drop out of the public feed", func(t *testing.T) {
		s, p := setup(t)

		require.NoError(t, p.PropagateBlogPrivacy(ctx, "b-alices-blog", true))

		recent, err := s.Posts().Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, recent)

		// And they come back when the blog goes public again.
		require.NoError(t, p.PropagateBlogPrivacy(ctx, "b-alices-blog", false))
		recent, err = s.Posts().Recent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})

	t.Run("unknown blog", func(t *testing.T) {
		_, p := setup(t)
		err := p.PropagateBlogPrivacy(ctx, "b-nope", true)
		assert.ErrorIs(t, err, ErrBlogNotFound)
	})

	t.Run("failure rolls back the blog flag too", func(t *testing.T) {
		s, p := setup(t)

		s.FailAfterWrites(1)
		err := p.PropagateBlogPrivacy(ctx, "b-alices-blog", true)
		s.FailAfterWrites(-1)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransactionFailed)

		b, err := s.Blogs().FindByID(ctx, "b-alices-blog")
		require.NoError(t, err)
		assert.False(t, b.Private)
	})
}
