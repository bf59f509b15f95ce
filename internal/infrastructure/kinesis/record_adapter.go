package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
)

// The DynamoDB-to-Kinesis integration wraps each stream record in the
// DynamoDB Streams JSON shape; Lambda consumers decode that envelope and
// keep only INSERTs, since rows in the events table are never updated.

// ConvertFromKinesisRecord decodes one Kinesis record into a store.Event.
// Returns (nil, nil) for non-INSERT records.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Event, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("decode stream record: %w", err)
	}

	return ConvertFromDynamoDBStreamRecord(streamRecord)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB Stream record to a
// store.Event. Returns (nil, nil) for non-INSERT records.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Event, error) {
	if record.EventName != "INSERT" {
		return nil, nil
	}

	return convertDynamoDBImage(record.Change.NewImage)
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok {
		return v.String()
	}
	return ""
}

func convertDynamoDBImage(image map[string]events.DynamoDBAttributeValue) (*store.Event, error) {
	if image == nil {
		return nil, fmt.Errorf("stream record has no new image")
	}

	event := &store.Event{
		ID:            stringAttr(image, "id"),
		AggregateID:   stringAttr(image, "aggregate_id"),
		AggregateType: stringAttr(image, "aggregate_type"),
		EventType:     stringAttr(image, "event_type"),
	}
	if data := stringAttr(image, "data"); data != "" {
		event.Data = json.RawMessage(data)
	}

	if v, ok := image["created_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		event.Timestamp = t
	}
	if v, ok := image["version"]; ok {
		version, err := v.Integer()
		if err != nil {
			return nil, fmt.Errorf("parse version: %w", err)
		}
		event.Version = int(version)
	}

	if event.ID == "" || event.AggregateID == "" || event.EventType == "" {
		return nil, fmt.Errorf("incomplete event image: id=%q aggregate_id=%q event_type=%q",
			event.ID, event.AggregateID, event.EventType)
	}

	return event, nil
}

// BatchConvertFromKinesisEvent converts every record in a Kinesis batch.
// Returns the converted events alongside per-record errors; one bad record
// does not stop the batch.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]*store.Event, []error) {
	var eventList []*store.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		if event != nil {
			eventList = append(eventList, event)
		}
	}

	return eventList, errs
}
