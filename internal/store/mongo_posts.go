package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillside/backend/internal/models"
)

type blogRefDoc struct {
	Doc     string `bson:"doc"`
	Private bool   `bson:"private"`
}

type authorRefDoc struct {
	Doc    string `bson:"doc"`
	Status string `bson:"status"`
}

type mongoPostDoc struct {
	ID      string       `bson:"_id"`
	Blog    blogRefDoc   `bson:"blog"`
	Author  authorRefDoc `bson:"author"`
	Title   string       `bson:"title"`
	Content string       `bson:"content"`
	Private bool         `bson:"private"`
	Created time.Time    `bson:"created"`
}

func postDocToModel(d mongoPostDoc) *models.Post {
	return &models.Post{
		ID:      d.ID,
		Blog:    models.BlogRef{Doc: d.Blog.Doc, Private: d.Blog.Private},
		Author:  models.AuthorRef{Doc: d.Author.Doc, Status: d.Author.Status},
		Title:   d.Title,
		Content: d.Content,
		Private: d.Private,
		Created: d.Created,
	}
}

// visiblePostFilter hides private posts, posts on private blogs and posts by
// banned authors. It relies entirely on the denormalized copies, which is why
// propagation must be atomic.
func visiblePostFilter() bson.M {
	return bson.M{
		"blog.private":  bson.M{"$ne": true},
		"author.status": bson.M{"$ne": models.StatusBanned},
		"private":       bson.M{"$ne": true},
	}
}

type mongoPostRepo struct {
	col *mongo.Collection
}

func (r *mongoPostRepo) Insert(ctx context.Context, p *models.Post) error {
	doc := mongoPostDoc{
		ID:      p.ID,
		Blog:    blogRefDoc{Doc: p.Blog.Doc, Private: p.Blog.Private},
		Author:  authorRefDoc{Doc: p.Author.Doc, Status: p.Author.Status},
		Title:   p.Title,
		Content: p.Content,
		Private: p.Private,
		Created: p.Created,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *mongoPostRepo) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var d mongoPostDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return postDocToModel(d), nil
}

func (r *mongoPostRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPostRepo) FindVisible(ctx context.Context, id string) (*models.Post, error) {
	filter := visiblePostFilter()
	filter["_id"] = id
	return r.findOne(ctx, filter)
}

func (r *mongoPostRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Post, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Post, 0)
	for cur.Next(ctx) {
		var d mongoPostDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, postDocToModel(d))
	}
	return out, cur.Err()
}

func (r *mongoPostRepo) FindByBlog(ctx context.Context, blogID string, includePrivate bool) ([]*models.Post, error) {
	filter := bson.M{"blog.doc": blogID}
	if !includePrivate {
		filter["private"] = bson.M{"$ne": true}
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created", Value: -1}}))
}

func (r *mongoPostRepo) FindByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"author.doc": authorID}, options.Find().SetSort(bson.D{{Key: "created", Value: -1}}))
}

func (r *mongoPostRepo) Recent(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.find(
		ctx,
		visiblePostFilter(),
		options.Find().SetSort(bson.D{{Key: "created", Value: -1}}).SetLimit(int64(limit)),
	)
}

func (r *mongoPostRepo) UpdateAuthorStatus(ctx context.Context, authorID, status string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"author.doc": authorID}, bson.M{"$set": bson.M{"author.status": status}})
	return err
}

func (r *mongoPostRepo) UpdateBlogPrivate(ctx context.Context, blogID string, private bool) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"blog.doc": blogID}, bson.M{"$set": bson.M{"blog.private": private}})
	return err
}

func (r *mongoPostRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPostRepo) DeleteByBlog(ctx context.Context, blogID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"blog.doc": blogID})
	return err
}

func (r *mongoPostRepo) DeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"author.doc": authorID})
	return err
}
