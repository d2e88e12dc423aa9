package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

// BlogService covers blog, post and comment lifecycle. Creation paths stamp
// the denormalized owner/author status and blog privacy copies from the
// current source values; after that, only the propagator may rewrite them.
type BlogService struct {
	store      store.Store
	propagator *Propagator
}

func NewBlogService(s store.Store, p *Propagator) *BlogService {
	return &BlogService{store: s, propagator: p}
}

// CreateBlog requires a Blogger in good standing (enforced by the caller via
// the authenticated principal).
func (s *BlogService) CreateBlog(ctx context.Context, owner *models.User, req *models.CreateBlogRequest) (*models.Blog, error) {
	if _, err := s.store.Blogs().FindByName(ctx, req.Name); err == nil {
		return nil, errors.New("blog name already taken")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	blog := &models.Blog{
		ID:          uuid.New().String(),
		Owner:       models.OwnerRef{Doc: owner.ID, Status: owner.Status},
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Private:     false,
		Created:     time.Now().UTC(),
	}
	if err := s.store.Blogs().Insert(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// UpdateBlog edits title/description and, when the private flag changes,
// routes through the propagator so the blog.private copies on its posts move
// in the same transaction.
func (s *BlogService) UpdateBlog(ctx context.Context, ownerID, blogID string, req *models.UpdateBlogRequest) (*models.Blog, error) {
	blog, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Owner.Doc != ownerID {
		return nil, ErrForbidden
	}

	set := map[string]interface{}{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if len(set) > 0 {
		if err := s.store.Blogs().Update(ctx, blogID, set); err != nil {
			return nil, err
		}
	}

	if req.Private != nil && *req.Private != blog.Private {
		if err := s.propagator.PropagateBlogPrivacy(ctx, blogID, *req.Private); err != nil {
			return nil, err
		}
	}

	return s.store.Blogs().FindByID(ctx, blogID)
}

// DeleteBlog removes the blog and its posts. Comments on those posts survive
// on purpose; they belong to other users.
func (s *BlogService) DeleteBlog(ctx context.Context, ownerID, blogID string) error {
	blog, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBlogNotFound
		}
		return err
	}
	if blog.Owner.Doc != ownerID {
		return ErrForbidden
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Posts().DeleteByBlog(ctx, blogID); err != nil {
			return err
		}
		return s.store.Blogs().Delete(ctx, blogID)
	})
	if err != nil {
		return err
	}
	return nil
}

func (s *BlogService) CreatePost(ctx context.Context, author *models.User, blogID string, req *models.CreatePostRequest) (*models.Post, error) {
	blog, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Owner.Doc != author.ID {
		return nil, ErrForbidden
	}

	post := &models.Post{
		ID:      uuid.New().String(),
		Blog:    models.BlogRef{Doc: blog.ID, Private: blog.Private},
		Author:  models.AuthorRef{Doc: author.ID, Status: author.Status},
		Title:   req.Title,
		Content: req.Content,
		Private: req.Private,
		Created: time.Now().UTC(),
	}
	if err := s.store.Posts().Insert(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *BlogService) DeletePost(ctx context.Context, authorID, postID string) error {
	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.Author.Doc != authorID {
		return ErrForbidden
	}
	return s.store.Posts().Delete(ctx, postID)
}

func (s *BlogService) CreateComment(ctx context.Context, author *models.User, postID string, req *models.CreateCommentRequest) (*models.Comment, error) {
	if _, err := s.store.Posts().FindByID(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		ID:       uuid.New().String(),
		BlogPost: postID,
		Author:   models.AuthorRef{Doc: author.ID, Status: author.Status},
		Content:  req.Content,
		Created:  time.Now().UTC(),
	}
	if err := s.store.Comments().Insert(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment lets a commenter remove their own comment.
func (s *BlogService) DeleteComment(ctx context.Context, authorID, commentID string) error {
	comment, err := s.store.Comments().FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.Author.Doc != authorID {
		return ErrForbidden
	}
	return s.store.Comments().Delete(ctx, commentID)
}

// GetBlogByName is the public blog read; private blogs are forbidden rather
// than hidden so owners get a clear signal.
func (s *BlogService) GetBlogByName(ctx context.Context, name string) (*models.Blog, error) {
	blog, err := s.store.Blogs().FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Private {
		return nil, ErrForbidden
	}
	return blog, nil
}

func (s *BlogService) GetBlogForOwner(ctx context.Context, ownerID, blogID string) (*models.Blog, error) {
	blog, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Owner.Doc != ownerID {
		return nil, ErrForbidden
	}
	return blog, nil
}

func (s *BlogService) ListBlogs(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, error) {
	filter.IncludePrivate = false
	return s.store.Blogs().Find(ctx, filter)
}

func (s *BlogService) ListOwnBlogs(ctx context.Context, ownerID string) ([]*models.Blog, error) {
	return s.store.Blogs().Find(ctx, models.BlogFilter{OwnerID: ownerID, IncludePrivate: true})
}

// ListBlogPosts is the public post listing for a blog: 404 if the blog does
// not exist, 403 if it is private, private posts hidden.
func (s *BlogService) ListBlogPosts(ctx context.Context, blogName string) ([]*models.Post, error) {
	blog, err := s.store.Blogs().FindByName(ctx, blogName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Private {
		return nil, ErrForbidden
	}
	return s.store.Posts().FindByBlog(ctx, blog.ID, false)
}

func (s *BlogService) ListOwnPosts(ctx context.Context, ownerID, blogID string) ([]*models.Post, error) {
	blog, err := s.store.Blogs().FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBlogNotFound
		}
		return nil, err
	}
	if blog.Owner.Doc != ownerID {
		return nil, ErrForbidden
	}
	return s.store.Posts().FindByBlog(ctx, blogID, true)
}

// RecentPosts feeds the landing page. The visibility filter rides entirely on
// the denormalized copies, which is what makes atomic propagation a security
// property rather than a nicety.
func (s *BlogService) RecentPosts(ctx context.Context, limit int) ([]*models.Post, error) {
	return s.store.Posts().Recent(ctx, limit)
}

// GetPost is the public single-post read with the same visibility filter as
// RecentPosts.
func (s *BlogService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.store.Posts().FindVisible(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// ListComments hides comments from banned authors via the denormalized copy.
func (s *BlogService) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.store.Comments().FindByPost(ctx, postID)
}
