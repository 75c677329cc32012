package interfaces

import (
	"context"

	edamodels "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Models"
)

// ReadingRepository persists sensor readings. Implementations must be safe for concurrent use.
type ReadingRepository interface {
	// InsertReading stores the reading and returns the generated id as a string.
	InsertReading(ctx context.Context, reading edamodels.SensorReading) (string, error)
}
