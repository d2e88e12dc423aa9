package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillside/backend/internal/models"
)

type mongoUserDoc struct {
	ID             string    `bson:"_id"`
	Username       string    `bson:"username"`
	FirstName      string    `bson:"first_name"`
	LastName       string    `bson:"last_name"`
	Email          string    `bson:"email"`
	Status         string    `bson:"status"`
	AccountType    string    `bson:"account_type"`
	Public         bool      `bson:"public"`
	PasswordHash   string    `bson:"password_hash"`
	AccountCreated time.Time `bson:"account_created"`
}

func userDocToModel(d mongoUserDoc) *models.User {
	return &models.User{
		ID:             d.ID,
		Username:       d.Username,
		FirstName:      d.FirstName,
		LastName:       d.LastName,
		Email:          d.Email,
		Status:         d.Status,
		AccountType:    d.AccountType,
		Public:         d.Public,
		PasswordHash:   d.PasswordHash,
		AccountCreated: d.AccountCreated,
	}
}

func userModelToDoc(u *models.User) mongoUserDoc {
	return mongoUserDoc{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Status:         u.Status,
		AccountType:    u.AccountType,
		Public:         u.Public,
		PasswordHash:   u.PasswordHash,
		AccountCreated: u.AccountCreated,
	}
}

type mongoUserRepo struct {
	col *mongo.Collection
}

func (r *mongoUserRepo) Insert(ctx context.Context, u *models.User) error {
	_, err := r.col.InsertOne(ctx, userModelToDoc(u))
	return err
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var d mongoUserDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return userDocToModel(d), nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepo) Find(ctx context.Context, filter models.UserFilter) ([]*models.User, error) {
	match := bson.M{}
	if filter.Username != "" {
		match["username"] = filter.Username
	}
	if filter.FirstName != "" {
		match["first_name"] = filter.FirstName
	}
	if filter.LastName != "" {
		match["last_name"] = filter.LastName
	}
	if filter.Email != "" {
		match["email"] = filter.Email
	}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.AccountType != "" {
		match["account_type"] = filter.AccountType
	}
	created := bson.M{}
	if !filter.CreatedAfter.IsZero() {
		created["$gte"] = filter.CreatedAfter
	}
	if !filter.CreatedBefore.IsZero() {
		created["$lte"] = filter.CreatedBefore
	}
	if len(created) > 0 {
		match["account_created"] = created
	}

	skip := int64(filter.Page) * PageSize
	cur, err := r.col.Find(
		ctx,
		match,
		options.Find().SetSort(bson.D{{Key: "account_created", Value: -1}}).SetSkip(skip).SetLimit(PageSize),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.User, 0)
	for cur.Next(ctx) {
		var d mongoUserDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, userDocToModel(d))
	}
	return out, cur.Err()
}

func (r *mongoUserRepo) updateOne(ctx context.Context, id string, set bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) UpdateProfile(ctx context.Context, id string, set map[string]string) error {
	if len(set) == 0 {
		return nil
	}
	fields := bson.M{}
	for k, v := range set {
		fields[k] = v
	}
	return r.updateOne(ctx, id, fields)
}

func (r *mongoUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{"password_hash": passwordHash})
}

func (r *mongoUserRepo) UpdatePublic(ctx context.Context, id string, public bool) error {
	return r.updateOne(ctx, id, bson.M{"public": public})
}

func (r *mongoUserRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateOne(ctx, id, bson.M{"status": status})
}

func (r *mongoUserRepo) UpdateAccountType(ctx context.Context, id, accountType string) error {
	return r.updateOne(ctx, id, bson.M{"account_type": accountType})
}

func (r *mongoUserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
