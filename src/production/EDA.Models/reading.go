package edamodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SensorID is the only sensor this service accepts readings for.
const SensorID = "sensor_1"

// DefaultGranularity is the sampling interval in minutes used when a request omits one.
const DefaultGranularity = 15

// ReadingMetadata is the time-series meta field of a reading.
type ReadingMetadata struct {
	SensorIDs []string `bson:"sensor_ids" json:"sensor_ids"`
}

// SensorReading is the document persisted for every accepted request.
// Granularity and Sensor1Energy hold whatever JSON value the client sent.
type SensorReading struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata      ReadingMetadata    `bson:"metadata" json:"metadata"`
	Granularity   interface{}        `bson:"granularity" json:"granularity"`
	Sensor1Energy interface{}        `bson:"sensor_1_energy" json:"sensor_1_energy"`
}

// NewReadingMetadata returns the constant metadata attached to every reading.
func NewReadingMetadata() ReadingMetadata {
	return ReadingMetadata{SensorIDs: []string{SensorID}}
}
