package api_models

// Messages returned by the energy endpoints.
const (
	WelcomeMessage = "Welcome to the Energy Data API"
	StoredMessage  = "Data stored successfully and acknowledged."

	ErrNoPayload       = "No JSON payload received"
	ErrInvalidPayload  = "Invalid JSON payload"
	ErrMissingSensor   = "Missing required sensor data: sensor_1"
	ErrProcessing      = "Error processing data"
	ErrInsertionFailed = "Failed to insert data into database"
)

// EnergyResponse acknowledges a stored reading
type EnergyResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ReadingAck is published to MQTT after a reading is stored
type ReadingAck struct {
	ID            string      `json:"id"`
	Timestamp     string      `json:"timestamp"`
	Granularity   interface{} `json:"granularity"`
	Sensor1Energy interface{} `json:"sensor_1_energy"`
}
