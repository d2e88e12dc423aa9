package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store/memstore"
)

// seedUser inserts a user and returns it. IDs double as usernames with a "u-"
// prefix stripped so tests stay readable.
func seedUser(t *testing.T, s *memstore.MemStore, username, accountType string) *models.User {
	t.Helper()
	u := &models.User{
		ID:             "u-" + username,
		Username:       username,
		FirstName:      "Test",
		LastName:       "User",
		Email:          username + "@example.com",
		Status:         models.StatusGood,
		AccountType:    accountType,
		AccountCreated: time.Now().UTC(),
	}
	require.NoError(t, s.Users().Insert(context.Background(), u))
	return u
}

func seedBlog(t *testing.T, s *memstore.MemStore, owner *models.User, name string) *models.Blog {
	t.Helper()
	b := &models.Blog{
		ID:          "b-" + name,
		Owner:       models.OwnerRef{Doc: owner.ID, Status: owner.Status},
		Name:        name,
		Title:       "A blog",
		Description: "About things",
		Created:     time.Now().UTC(),
	}
	require.NoError(t, s.Blogs().Insert(context.Background(), b))
	return b
}

func seedPost(t *testing.T, s *memstore.MemStore, blog *models.Blog, author *models.User, id string) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:      id,
		Blog:    models.BlogRef{Doc: blog.ID, Private: blog.Private},
		Author:  models.AuthorRef{Doc: author.ID, Status: author.Status},
		Title:   "A post",
		Content: "Some content",
		Created: time.Now().UTC(),
	}
	require.NoError(t, s.Posts().Insert(context.Background(), p))
	return p
}

func seedComment(t *testing.T, s *memstore.MemStore, post *models.Post, author *models.User, id string) *models.Comment {
	t.Helper()
	c := &models.Comment{
		ID:       id,
		BlogPost: post.ID,
		Author:   models.AuthorRef{Doc: author.ID, Status: author.Status},
		Content:  "A comment",
		Created:  time.Now().UTC(),
	}
	require.NoError(t, s.Comments().Insert(context.Background(), c))
	return c
}

func seedReport(t *testing.T, s *memstore.MemStore, id, contentType, contentID, reportingUser, reportedUser string) *models.Report {
	t.Helper()
	r := &models.Report{
		ID:            id,
		ContentType:   contentType,
		ContentID:     contentID,
		ReportingUser: reportingUser,
		ReportedUser:  reportedUser,
		Reason:        "Being rude",
		ReportCreated: time.Now().UTC(),
	}
	require.NoError(t, s.Reports().Insert(context.Background(), r))
	return r
}
