package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quillside/backend/internal/models"
)

// The resolution fields are flat in the document (matching the historical
// schema) and folded into models.Resolution when settled.
type mongoReportDoc struct {
	ID                  string     `bson:"_id"`
	ContentType         string     `bson:"content_type"`
	ContentID           string     `bson:"content_id"`
	ReportingUser       string     `bson:"reporting_user"`
	ReportedUser        string     `bson:"reported_user"`
	Reason              string     `bson:"reason"`
	ReportCreated       time.Time  `bson:"report_created"`
	Settled             bool       `bson:"settled,omitempty"`
	ActionTaken         string     `bson:"action_taken,omitempty"`
	DateOfAction        *time.Time `bson:"date_of_action,omitempty"`
	RespondingModerator string     `bson:"responding_moderator,omitempty"`
}

func reportDocToModel(d mongoReportDoc) *models.Report {
	r := &models.Report{
		ID:            d.ID,
		ContentType:   d.ContentType,
		ContentID:     d.ContentID,
		ReportingUser: d.ReportingUser,
		ReportedUser:  d.ReportedUser,
		Reason:        d.Reason,
		ReportCreated: d.ReportCreated,
		Settled:       d.Settled,
	}
	if d.Settled && d.DateOfAction != nil {
		r.Resolution = &models.Resolution{
			ActionTaken:         d.ActionTaken,
			DateOfAction:        *d.DateOfAction,
			RespondingModerator: d.RespondingModerator,
		}
	}
	return r
}

type mongoReportRepo struct {
	col *mongo.Collection
}

func (r *mongoReportRepo) Insert(ctx context.Context, rep *models.Report) error {
	doc := mongoReportDoc{
		ID:            rep.ID,
		ContentType:   rep.ContentType,
		ContentID:     rep.ContentID,
		ReportingUser: rep.ReportingUser,
		ReportedUser:  rep.ReportedUser,
		Reason:        rep.Reason,
		ReportCreated: rep.ReportCreated,
	}
	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *mongoReportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var d mongoReportDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return reportDocToModel(d), nil
}

func (r *mongoReportRepo) Find(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	match := bson.M{}
	if filter.Settled != nil {
		if *filter.Settled {
			match["settled"] = true
		} else {
			match["settled"] = bson.M{"$ne": true}
		}
	}
	if filter.ContentType != "" {
		match["content_type"] = filter.ContentType
	}
	if filter.ReportedUser != "" {
		match["reported_user"] = filter.ReportedUser
	}
	if filter.ReportingUser != "" {
		match["reporting_user"] = filter.ReportingUser
	}
	if filter.RespondingModerator != "" {
		match["responding_moderator"] = filter.RespondingModerator
	}
	created := bson.M{}
	if !filter.CreatedAfter.IsZero() {
		created["$gte"] = filter.CreatedAfter
	}
	if !filter.CreatedBefore.IsZero() {
		created["$lte"] = filter.CreatedBefore
	}
	if len(created) > 0 {
		match["report_created"] = created
	}
	action := bson.M{}
	if !filter.ActionAfter.IsZero() {
		action["$gte"] = filter.ActionAfter
	}
	if !filter.ActionBefore.IsZero() {
		action["$lte"] = filter.ActionBefore
	}
	if len(action) > 0 {
		match["date_of_action"] = action
	}

	skip := int64(filter.Page) * PageSize
	cur, err := r.col.Find(
		ctx,
		match,
		options.Find().SetSort(bson.D{{Key: "report_created", Value: -1}}).SetSkip(skip).SetLimit(PageSize),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]*models.Report, 0)
	for cur.Next(ctx) {
		var d mongoReportDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, reportDocToModel(d))
	}
	return out, cur.Err()
}

func (r *mongoReportRepo) ExistsFor(ctx context.Context, contentID, reportingUser string) (bool, error) {
	err := r.col.FindOne(
		ctx,
		bson.M{"content_id": contentID, "reporting_user": reportingUser},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mongoReportRepo) Settle(ctx context.Context, id string, res models.Resolution) error {
	upd, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"settled":              true,
		"action_taken":         res.ActionTaken,
		"date_of_action":       res.DateOfAction,
		"responding_moderator": res.RespondingModerator,
	}})
	if err != nil {
		return err
	}
	if upd.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
