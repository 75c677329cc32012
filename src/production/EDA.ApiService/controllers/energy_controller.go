package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gitlab.com/maplesense1/energy.api_server/src/production/EDA.ApiService/middleware"
	clock "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Clock"
	logger "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Logger"
	edamodels "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Models"
	api_models "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Models/api"
	interfaces "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Repository/Interfaces"
)

// AckPublisher announces stored readings to downstream consumers
type AckPublisher interface {
	PublishReading(ack api_models.ReadingAck) error
}

// EnergyController handles sensor reading ingestion
type EnergyController struct {
	readingRepo interfaces.ReadingRepository
	publisher   AckPublisher
	now         clock.Clock
	logger      *logger.Logger

	// in-flight acknowledgment publishes
	inflight sync.WaitGroup
}

// NewEnergyController creates a new energy controller. publisher may be nil.
func NewEnergyController(readingRepo interfaces.ReadingRepository, publisher AckPublisher, now clock.Clock, logger *logger.Logger) *EnergyController {
	return &EnergyController{
		readingRepo: readingRepo,
		publisher:   publisher,
		now:         now,
		logger:      logger.WithComponent("energy"),
	}
}

// RegisterRoutes registers the energy routes with Gin
func (c *EnergyController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", c.Welcome)
	router.POST("/energy", c.StoreEnergyData)
}

// Welcome identifies the service. It never touches storage.
func (c *EnergyController) Welcome(ctx *gin.Context) {
	ctx.String(http.StatusOK, api_models.WelcomeMessage)
}

// StoreEnergyData parses, validates, stamps and stores one reading
func (c *EnergyController) StoreEnergyData(ctx *gin.Context) {
	log := c.logger.WithRequestID(middleware.GetRequestIDFromGinContext(ctx))

	payload, stageErr := parsePayload(ctx)
	if stageErr != nil {
		c.fail(ctx, log, stageErr)
		return
	}
	log.WithField("payload", payload).Info("Received data")

	reading, stageErr := buildReading(payload, c.now)
	if stageErr != nil {
		c.fail(ctx, log, stageErr)
		return
	}

	id, stageErr := c.persistReading(ctx.Request.Context(), reading)
	if stageErr != nil {
		c.fail(ctx, log, stageErr)
		return
	}
	log.WithField("id", id).Info("Inserted document")

	ctx.JSON(http.StatusOK, api_models.EnergyResponse{
		Message: api_models.StoredMessage,
		ID:      id,
	})

	c.publishAck(log, id, reading)
}

// Wait blocks until in-flight acknowledgments finish or ctx is done
func (c *EnergyController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for acknowledgments: %w", ctx.Err())
	}
}

func (c *EnergyController) fail(ctx *gin.Context, log *logger.Logger, err *StageError) {
	entry := log.WithField("kind", err.Kind.String())
	if err.Cause != nil {
		entry = entry.WithError(err.Cause)
	}
	entry.Error(err.Message)

	ctx.JSON(err.Kind.StatusCode(), api_models.ErrorResponse{Error: err.Message})
}

// parsePayload reads the request body as a single JSON value.
// Numbers keep their exact form when binding.EnableDecoderUseNumber is set.
func parsePayload(ctx *gin.Context) (interface{}, *StageError) {
	if !isJSONContentType(ctx.ContentType()) {
		return nil, newBadRequest(api_models.ErrInvalidPayload, errors.New("content type is not application/json"))
	}

	body, err := ctx.GetRawData()
	if err != nil {
		return nil, newBadRequest(api_models.ErrInvalidPayload, err)
	}
	// rejects empty bodies and trailing data, which the decoder alone would accept
	if !json.Valid(body) {
		return nil, newBadRequest(api_models.ErrInvalidPayload, errors.New("body is not a single JSON value"))
	}

	var value interface{}
	if err := binding.JSON.BindBody(body, &value); err != nil {
		return nil, newBadRequest(api_models.ErrInvalidPayload, err)
	}
	if isEmptyJSON(value) {
		return nil, newBadRequest(api_models.ErrNoPayload, nil)
	}

	value, err = normalizeNumbers(value)
	if err != nil {
		return nil, newBadRequest(api_models.ErrInvalidPayload, err)
	}
	return value, nil
}

// buildReading requires sensor_1 and stamps the reading with the clock's time.
// Arrays and strings are searched for sensor_1 like any other payload; only an
// object can supply its value.
func buildReading(payload interface{}, now clock.Clock) (edamodels.SensorReading, *StageError) {
	found, err := containsSensor(payload)
	if err != nil {
		return edamodels.SensorReading{}, newInternalError(api_models.ErrProcessing, err)
	}
	if !found {
		return edamodels.SensorReading{}, newBadRequest(api_models.ErrMissingSensor, nil)
	}

	fields, ok := payload.(map[string]interface{})
	if !ok {
		return edamodels.SensorReading{}, newInternalError(api_models.ErrProcessing, fmt.Errorf("cannot read fields from a JSON %T", payload))
	}

	if now == nil {
		return edamodels.SensorReading{}, newInternalError(api_models.ErrProcessing, errors.New("no clock configured"))
	}
	timestamp := now()
	if timestamp.IsZero() {
		return edamodels.SensorReading{}, newInternalError(api_models.ErrProcessing, errors.New("clock returned zero time"))
	}

	granularity, ok := fields["granularity"]
	if !ok {
		granularity = edamodels.DefaultGranularity
	}

	return edamodels.SensorReading{
		Timestamp:     timestamp,
		Metadata:      edamodels.NewReadingMetadata(),
		Granularity:   granularity,
		Sensor1Energy: fields[edamodels.SensorID],
	}, nil
}

// containsSensor looks for sensor_1 among object keys, array elements or inside a string.
// Scalars cannot be searched.
func containsSensor(payload interface{}) (bool, error) {
	switch v := payload.(type) {
	case map[string]interface{}:
		_, ok := v[edamodels.SensorID]
		return ok, nil
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == edamodels.SensorID {
				return true, nil
			}
		}
		return false, nil
	case string:
		return strings.Contains(v, edamodels.SensorID), nil
	default:
		return false, fmt.Errorf("cannot look up %s in a JSON %T", edamodels.SensorID, payload)
	}
}

func (c *EnergyController) persistReading(ctx context.Context, reading edamodels.SensorReading) (string, *StageError) {
	id, err := c.readingRepo.InsertReading(ctx, reading)
	if err != nil {
		return "", newInternalError(api_models.ErrInsertionFailed, err)
	}
	return id, nil
}

// publishAck runs after the response is written; failures are only logged.
func (c *EnergyController) publishAck(log *logger.Logger, id string, reading edamodels.SensorReading) {
	if c.publisher == nil {
		return
	}

	ack := api_models.ReadingAck{
		ID:            id,
		Timestamp:     reading.Timestamp.Format(time.RFC3339Nano),
		Granularity:   reading.Granularity,
		Sensor1Energy: reading.Sensor1Energy,
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := c.publisher.PublishReading(ack); err != nil {
			log.WithError(err).WithField("id", id).Warn("Failed to publish reading acknowledgment")
		}
	}()
}

func isJSONContentType(contentType string) bool {
	mediaType := strings.ToLower(contentType)
	return mediaType == binding.MIMEJSON ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

// isEmptyJSON reports whether a decoded value carries no data: null, {}, [], "", false or 0.
func isEmptyJSON(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case string:
		return v == ""
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	default:
		return false
	}
}

// normalizeNumbers turns json.Number into int64 when integral and float64 otherwise,
// so integers are stored as BSON integers rather than doubles. Numbers outside the
// float64 range are rejected.
func normalizeNumbers(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s is out of range", v.String())
		}
		return f, nil
	case map[string]interface{}:
		for key, item := range v {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			v[key] = n
		}
		return v, nil
	case []interface{}:
		for i, item := range v {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = n
		}
		return v, nil
	default:
		return v, nil
	}
}
