package implementation

import (
	"context"
	"fmt"
	"time"

	edamodels "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const insertTimeout = 3 * time.Second

type MongoReadingRepository struct {
	coll *mongo.Collection
}

func NewMongoReadingRepository(coll *mongo.Collection) *MongoReadingRepository {
	return &MongoReadingRepository{coll: coll}
}

func (r *MongoReadingRepository) InsertReading(ctx context.Context, reading edamodels.SensorReading) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, reading)
	if err != nil {
		return "", fmt.Errorf("insert reading: %w", err)
	}
	return insertedIDString(res.InsertedID), nil
}

func insertedIDString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
