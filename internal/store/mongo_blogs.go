package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillside/backend/internal/models"
)

type ownerRefDoc struct {
	Doc    string `bson:"doc"`
	Status string `bson:"status"`
}

type mongoBlogDoc struct {
	ID          string      `bson:"_id"`
	Owner       ownerRefDoc `bson:"owner"`
	Name        string      `bson:"name"`
	Title       string      `bson:"title"`
	Description string      `bson:"description"`
	Private     bool        `bson:"private"`
	Created     time.Time   `bson:"created"`
}

func blogDocToModel(d mongoBlogDoc) *models.Blog {
	return &models.Blog{
		ID:          d.ID,
		Owner:       models.OwnerRef{Doc: d.Owner.Doc, Status: d.Owner.Status},
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		Private:     d.Private,
		Created:     d.Created,
	}
}

type mongoBlogRepo struct {
	col *mongo.Collection
}

func (r *mongoBlogRepo) Insert(ctx context.Context, b *models.Blog) error {
	doc := mongoBlogDoc{
		ID:          b.ID,
		Owner:       ownerRefDoc{Doc: b.Owner.Doc, Status: b.Owner.Status},
		Name:        b.Name,
		Title:       b.Title,
		Description: b.Description,
		Private:     b.Private,
		Created:     b.Created,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *mongoBlogRepo) findOne(ctx context.Context, filter bson.M) (*models.Blog, error) {
	var d mongoBlogDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return blogDocToModel(d), nil
}

func (r *mongoBlogRepo) FindByID(ctx context.Context, id string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoBlogRepo) FindByName(ctx context.Context, name string) (*models.Blog, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoBlogRepo) Find(ctx context.Context, filter models.BlogFilter) ([]*models.Blog, error) {
	match := bson.M{}
	if !filter.IncludePrivate {
		match["private"] = bson.M{"$ne": true}
	}
	if filter.OwnerID != "" {
		match["owner.doc"] = filter.OwnerID
	}

	cur, err := r.col.Find(ctx, match, options.Find().SetSort(bson.D{{Key: "created", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Blog, 0)
	for cur.Next(ctx) {
		var d mongoBlogDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, blogDocToModel(d))
	}
	return out, cur.Err()
}

func (r *mongoBlogRepo) Update(ctx context.Context, id string, set map[string]interface{}) error {
	if len(set) == 0 {
		return nil
	}
	fields := bson.M{}
	for k, v := range set {
		fields[k] = v
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepo) UpdateOwnerStatus(ctx context.Context, ownerID, status string) error {
	_, err := r.col.UpdateMany(ctx, bson.M{"owner.doc": ownerID}, bson.M{"$set": bson.M{"owner.status": status}})
	return err
}

func (r *mongoBlogRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlogRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"owner.doc": ownerID})
	return err
}
