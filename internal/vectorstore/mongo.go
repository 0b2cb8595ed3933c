package vectorstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// MongoStore keeps vectors in a MongoDB Atlas collection and queries them with $vectorSearch.
type MongoStore struct {
	collection *mongo.Collection
	indexName  string
}

type vectorDocument struct {
	ID        string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	RecordID  string    `bson:"record_id"`
	Vector    []float32 `bson:"vector"`
	Metadata  bson.M    `bson:"metadata"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type vectorResult struct {
	RecordID string  `bson:"record_id"`
	Metadata bson.M  `bson:"metadata"`
	Score    float64 `bson:"score"`
}

func NewMongoStore(db *mongo.Database, collection, indexName string) *MongoStore {
	return &MongoStore{
		collection: db.Collection(collection),
		indexName:  indexName,
	}
}

func documentID(namespace, id string) string {
	return namespace + ":" + id
}

func (s *MongoStore) Upsert(ctx context.Context, namespace string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("vectorstore").Start(ctx, "vectorstore.upsert")
	defer span.End()
	span.SetAttributes(attribute.String("vectorstore.namespace", namespace), attribute.Int("vectorstore.records", len(records)))

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		doc := vectorDocument{
			ID:        documentID(namespace, r.ID),
			Namespace: namespace,
			RecordID:  r.ID,
			Vector:    r.Values,
			Metadata:  bson.M(r.Metadata),
			UpdatedAt: now,
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	_, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		span.SetAttributes(attribute.Bool("vectorstore.error", true))
		return fmt.Errorf("bulk upsert into %s: %w", namespace, err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, namespace string, q Query) ([]Match, error) {
	ctx, span := otel.Tracer("vectorstore").Start(ctx, "vectorstore.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("vectorstore.namespace", namespace),
		attribute.Int("vectorstore.top_k", q.TopK),
		attribute.Bool("vectorstore.filter_only", len(q.Vector) == 0),
	)

	filter := bson.M{"namespace": namespace}
	for k, v := range q.Filter {
		filter["metadata."+k] = v
	}

	var (
		cursor *mongo.Cursor
		err    error
	)
	if len(q.Vector) == 0 {
		opts := options.Find().SetProjection(bson.M{"record_id": 1, "metadata": 1})
		if q.TopK > 0 {
			opts.SetLimit(int64(q.TopK))
		}
		cursor, err = s.collection.Find(ctx, filter, opts)
	} else {
		topK := q.TopK
		if topK <= 0 {
			topK = 10
		}
		pipeline := mongo.Pipeline{
			{{Key: "$vectorSearch", Value: bson.D{
				{Key: "index", Value: s.indexName},
				{Key: "path", Value: "vector"},
				{Key: "queryVector", Value: q.Vector},
				{Key: "numCandidates", Value: max(topK*20, 100)},
				{Key: "limit", Value: topK},
				{Key: "filter", Value: filter},
			}}},
			{{Key: "$project", Value: bson.D{
				{Key: "record_id", Value: 1},
				{Key: "metadata", Value: 1},
				{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
			}}},
		}
		cursor, err = s.collection.Aggregate(ctx, pipeline)
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("vectorstore.error", true))
		return nil, fmt.Errorf("query %s: %w", namespace, err)
	}
	defer cursor.Close(ctx)

	var results []vectorResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode %s results: %w", namespace, err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{ID: r.RecordID, Score: r.Score, Metadata: Metadata(r.Metadata)})
	}
	span.SetAttributes(attribute.Int("vectorstore.matches", len(matches)))
	return matches, nil
}

func (s *MongoStore) Update(ctx context.Context, namespace, id string, md Metadata) error {
	ctx, span := otel.Tracer("vectorstore").Start(ctx, "vectorstore.update")
	defer span.End()
	span.SetAttributes(attribute.String("vectorstore.namespace", namespace), attribute.String("vectorstore.record_id", id))

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": documentID(namespace, id)},
		bson.M{"$set": bson.M{"metadata": bson.M(md), "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", namespace, id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
