package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	SurveyCollection   = "surveys"
	ResponseCollection = "survey_responses"
)

// ConnectMongoDB เชื่อมต่อและ ping MongoDB ผู้เรียกต้อง Disconnect เอง
func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}
	log.Println("✅ MongoDB connected successfully")
	return client, nil
}

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

var indexSpecs = []indexSpec{
	{SurveyCollection, bson.D{{Key: "surveyId", Value: 1}}, true},
	{SurveyCollection, bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, false},
	{ResponseCollection, bson.D{{Key: "responseId", Value: 1}}, true},
	{ResponseCollection, bson.D{{Key: "surveyId", Value: 1}, {Key: "status", Value: 1}}, false},
	{ResponseCollection, bson.D{{Key: "respondentId", Value: 1}, {Key: "createdAt", Value: -1}}, false},
}

// EnsureIndexes สร้าง index ที่ระบบต้องใช้ (สร้างซ้ำได้ไม่มีผล)
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, spec := range indexSpecs {
		opts := options.Index().SetUnique(spec.unique)
		coll := db.Collection(spec.collection)
		if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.keys, Options: opts}); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", spec.collection, err)
		}
	}
	log.Println("✅ MongoDB indexes ensured")
	return nil
}
