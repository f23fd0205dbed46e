package knowledge

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoStore is a [Store] backed by Azure Cosmos DB for MongoDB vCore,
// using its cosmosSearch vector aggregate for retrieval.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore wraps an existing collection. Call
// [MongoStore.EnsureVectorIndex] once after provisioning.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// EnsureVectorIndex creates the DiskANN vector index over the
// embedding field. Creating an index that already exists is a no-op on
// the server side.
func (s *MongoStore) EnsureVectorIndex(ctx context.Context, dimensions int) error {
	command := bson.D{
		{Key: "createIndexes", Value: s.collection.Name()},
		{Key: "indexes", Value: bson.A{bson.D{
			{Key: "name", Value: "embedding_vector"},
			{Key: "key", Value: bson.D{{Key: "embedding", Value: "cosmosSearch"}}},
			{Key: "cosmosSearchOptions", Value: bson.D{
				{Key: "kind", Value: "vector-diskann"},
				{Key: "dimensions", Value: dimensions},
				{Key: "similarity", Value: "COS"},
			}},
		}}},
	}

	if err := s.collection.Database().RunCommand(ctx, command).Err(); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows := make([]any, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("document %q has no embedding", doc.ID)
		}
		rows = append(rows, doc)
	}

	if _, err := s.collection.InsertMany(ctx, rows); err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

func (s *MongoStore) Search(ctx context.Context, embedding []float64, limit int, minSimilarity float64) ([]SearchResult, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$search", Value: bson.D{
			{Key: "cosmosSearch", Value: bson.D{
				{Key: "vector", Value: embedding},
				{Key: "path", Value: "embedding"},
				{Key: "k", Value: limit},
			}},
			{Key: "returnStoredSource", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "similarity", Value: bson.D{{Key: "$meta", Value: "searchScore"}}},
			{Key: "document", Value: "$$ROOT"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []SearchResult
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		if row.Similarity < minSimilarity {
			continue
		}
		results = append(results, row)
	}
	return results, nil
}

func (s *MongoStore) Count(ctx context.Context) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}
