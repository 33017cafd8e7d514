package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-shorts/models"
)

type HistoryRepository struct {
	col *mongo.Collection
}

func NewHistoryRepository(db *mongo.Database, collection string) *HistoryRepository {
	if collection == "" {
		collection = "history"
	}
	return &HistoryRepository{col: db.Collection(collection)}
}

// Exists reports whether a document with the link or the normalized title key exists.
func (r *HistoryRepository) Exists(ctx context.Context, link, titleKey string) (bool, error) {
	filter := ExistsFilter(link, titleKey)
	if filter == nil {
		return false, nil
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertIfAbsent upserts the entry keyed by link (or title key when link is empty).
// It returns true when a new document was created.
func (r *HistoryRepository) InsertIfAbsent(ctx context.Context, e *models.HistoryEntry, titleKey string) (bool, error) {
	filter := bson.M{"link": e.Link}
	if e.Link == "" {
		filter = bson.M{"title_key": titleKey}
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"link":      e.Link,
			"title":     e.Title,
			"title_key": titleKey,
			"keyword":   e.Keyword,
			"used_at":   e.UsedAt,
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// Recent returns the latest entries ordered by used_at desc.
func (r *HistoryRepository) Recent(ctx context.Context, limit int64) ([]models.HistoryEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "used_at", Value: -1}}).SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.HistoryEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsFilter builds the $or lookup used by Exists. nil means nothing to match.
func ExistsFilter(link, titleKey string) bson.M {
	var or bson.A
	if link != "" {
		or = append(or, bson.M{"link": link})
	}
	if titleKey != "" {
		or = append(or, bson.M{"title_key": titleKey})
	}
	if len(or) == 0 {
		return nil
	}
	return bson.M{"$or": or}
}
