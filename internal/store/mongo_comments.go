package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillside/backend/internal/models"
)

type mongoCommentDoc struct {
	ID       string       `bson:"_id"`
	BlogPost string       `bson:"blog_post"`
	Author   authorRefDoc `bson:"author"`
	Content  string       `bson:"content"`
	Created  time.Time    `bson:"created"`
}

func commentDocToModel(d mongoCommentDoc) *models.Comment {
	return &models.Comment{
		ID:       d.ID,
		BlogPost: d.BlogPost,
		Author:   models.AuthorRef{Doc: d.Author.Doc, Status: d.Author.Status},
		Content:  d.Content,
		Created:  d.Created,
	}
}

type mongoCommentRepo struct {
	col *mongo.Collection
}

func (r *mongoCommentRepo) Insert(ctx context.Context, c *models.Comment) error {
	doc := mongoCommentDoc{
		ID:       c.ID,
		BlogPost: c.BlogPost,
		Author:   authorRefDoc{Doc: c.Author.Doc, Status: c.Author.Status},
		Content:  c.Content,
		Created:  c.Created,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var d mongoCommentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return commentDocToModel(d), nil
}

func (r *mongoCommentRepo) find(ctx context.Context, filter bson.M) ([]*models.Comment, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Comment, 0)
	for cur.Next(ctx) {
		var d mongoCommentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, commentDocToModel(d))
	}
	return out, cur.Err()
}

func (r *mongoCommentRepo) FindByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return r.find(ctx, bson.M{
		"blog_post":     postID,
		"author.status": bson.M{"$ne": models.StatusBanned},
	})
}

func (r *mongoCommentRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	return r.find(ctx, bson.M{"author.doc": authorID})
}

func (r *mongoCommentRepo) UpdateAuthorStatus(ctx context.Context, authorID, status string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"author.doc": authorID}, bson.M{"$set": bson.M{"author.status": status}})
	return err
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCommentRepo) DeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"author.doc": authorID})
	return err
}
