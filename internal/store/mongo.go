package store

import (
	"context"
	"crypto/tls"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore backs Store with five MongoDB collections. Transactions map onto
// session-scoped multi-document transactions; repo methods run their
// operations against the context they are handed, so calls made inside
// WithTransaction ride the session.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database

	users    *mongoUserRepo
	blogs    *mongoBlogRepo
	posts    *mongoPostRepo
	comments *mongoCommentRepo
	reports  *mongoReportRepo
}

func NewMongoStore(ctx context.Context, mongoURI, dbName string) (*MongoStore, error) {
	// Atlas occasionally fails TLS negotiation in some environments unless we force TLS 1.2.
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		db:       db,
		users:    &mongoUserRepo{col: db.Collection("users")},
		blogs:    &mongoBlogRepo{col: db.Collection("blogs")},
		posts:    &mongoPostRepo{col: db.Collection("blogposts")},
		comments: &mongoCommentRepo{col: db.Collection("comments")},
		reports:  &mongoReportRepo{col: db.Collection("reports")},
	}

	// Best-effort indexes.
	_, _ = s.users.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	_, _ = s.blogs.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner.doc", Value: 1}}},
	})
	_, _ = s.posts.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog.doc", Value: 1}}},
		{Keys: bson.D{{Key: "author.doc", Value: 1}}},
		{Keys: bson.D{{Key: "created", Value: -1}}},
	})
	_, _ = s.comments.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog_post", Value: 1}}},
		{Keys: bson.D{{Key: "author.doc", Value: 1}}},
	})
	_, _ = s.reports.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "reporting_user", Value: 1}}},
		{Keys: bson.D{{Key: "settled", Value: 1}}},
		{Keys: bson.D{{Key: "report_created", Value: -1}}},
	})

	log.Printf("MongoDB connected: db=%s", dbName)
	return s, nil
}

func (s *MongoStore) Users() UserRepo       { return s.users }
func (s *MongoStore) Blogs() BlogRepo       { return s.blogs }
func (s *MongoStore) Posts() PostRepo       { return s.posts }
func (s *MongoStore) Comments() CommentRepo { return s.comments }
func (s *MongoStore) Reports() ReportRepo   { return s.reports }

func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
