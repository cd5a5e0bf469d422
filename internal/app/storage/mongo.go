package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vancho-go/ipreverser/internal/app/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

const defaultMongoDatabase = "ipdb"

type mongoRecord struct {
	ID         bson.ObjectID `bson:"_id"`
	IP         string        `bson:"ip"`
	ReversedIP string        `bson:"reversedIp"`
	CreatedAt  time.Time     `bson:"createdAt"`
}

func (r mongoRecord) toModel() models.AddressRecord {
	return models.AddressRecord{
		ID:              r.ID.Hex(),
		Address:         r.IP,
		ReversedAddress: r.ReversedIP,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// InitializeMongo connects to uri, verifies the connection and makes sure the
// createdAt index exists. The database is taken from the URI path.
func InitializeMongo(ctx context.Context, uri, collection string) (*MongoStorage, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("initializeMongo: error parsing uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("initializeMongo: error connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("initializeMongo: error verifying connection: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("initializeMongo: error creating index: %w", err)
	}

	return &MongoStorage{client: client, collection: coll}, nil
}

func (s *MongoStorage) CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error) {
	doc := mongoRecord{
		ID:         bson.NewObjectID(),
		IP:         address,
		ReversedIP: reversed,
		CreatedAt:  now(),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return models.AddressRecord{}, fmt.Errorf("createRecord: error inserting document: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStorage) ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listRecent: error finding documents: %w", err)
	}

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("listRecent: error decoding documents: %w", err)
	}

	result := make([]models.AddressRecord, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toModel())
	}
	return result, nil
}

func (s *MongoStorage) ClearHistory(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clearHistory: error deleting documents: %w", err)
	}
	return nil
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
