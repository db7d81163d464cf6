package article

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository is an audit log of every article handed to the queue. It is
// optional wiring: the fetch service treats a nil Repository as disabled.
type Repository interface {
	RecordPublished(ctx context.Context, a *Article) error
}

type mongoRepository struct {
	col    *mongo.Collection
	logger *log.Logger
}

func NewMongoArticleRepository(db *mongo.Database, logger *log.Logger) (Repository, error) {
	col := db.Collection("published_articles")

	repo := &mongoRepository{
		col:    col,
		logger: logger,
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes guarantees one document per webUrl and keeps the audit log
// queryable by publication date.
func (r *mongoRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "webUrl", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "webPublicationDate", Value: 1}},
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)

	if err != nil && r.logger != nil {
		r.logger.Printf("failed to create indexes: %v", err)
	}
	return err
}

// RecordPublished upserts the article keyed by webUrl and counts how many
// times it crossed the queue. Repeated publishes of the same URL update the
// existing document rather than inserting a duplicate.
func (r *mongoRepository) RecordPublished(ctx context.Context, a *Article) error {
	now := time.Now()

	_, err := r.col.UpdateOne(
		ctx,
		bson.M{"webUrl": a.WebURL},
		bson.M{
			"$set": bson.M{
				"webPublicationDate": a.WebPublicationDate,
				"webTitle":           a.WebTitle,
				"contentPreview":     a.ContentPreview,
				"modifiedAt":         now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
			"$inc":         bson.M{"publishCount": 1},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
