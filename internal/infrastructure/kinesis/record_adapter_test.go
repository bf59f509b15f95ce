package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookCreatedImage() map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":             events.NewStringAttribute("event-1"),
		"aggregate_id":   events.NewStringAttribute("book-1"),
		"aggregate_type": events.NewStringAttribute("Book"),
		"event_type":     events.NewStringAttribute("BookCreated"),
		"data":           events.NewStringAttribute(`{"title":"Số Đỏ"}`),
		"created_at":     events.NewStringAttribute(time.Now().Format(time.RFC3339Nano)),
		"version":        events.NewNumberAttribute("1"),
	}
}

func TestConvertDynamoDBImage(t *testing.T) {
	tests := []struct {
		name    string
		image   map[string]events.DynamoDBAttributeValue
		wantErr bool
	}{
		{
			name:    "valid event",
			image:   bookCreatedImage(),
			wantErr: false,
		},
		{
			name:    "nil image",
			image:   nil,
			wantErr: true,
		},
		{
			name: "missing required fields",
			image: map[string]events.DynamoDBAttributeValue{
				"id": events.NewStringAttribute("event-1"),
			},
			wantErr: true,
		},
		{
			name: "bad created_at",
			image: func() map[string]events.DynamoDBAttributeValue {
				image := bookCreatedImage()
				image["created_at"] = events.NewStringAttribute("yesterday")
				return image
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := convertDynamoDBImage(tt.image)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, event)
			assert.Equal(t, "event-1", event.ID)
			assert.Equal(t, "book-1", event.AggregateID)
			assert.Equal(t, "Book", event.AggregateType)
			assert.Equal(t, "BookCreated", event.EventType)
			assert.Equal(t, 1, event.Version)
		})
	}
}

func TestConvertFromDynamoDBStreamRecord(t *testing.T) {
	t.Run("INSERT converts", func(t *testing.T) {
		record := events.DynamoDBEventRecord{
			EventName: "INSERT",
			Change:    events.DynamoDBStreamRecord{NewImage: bookCreatedImage()},
		}

		event, err := ConvertFromDynamoDBStreamRecord(record)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-1", event.ID)
	})

	t.Run("MODIFY and REMOVE are skipped", func(t *testing.T) {
		for _, name := range []string{"MODIFY", "REMOVE"} {
			event, err := ConvertFromDynamoDBStreamRecord(events.DynamoDBEventRecord{EventName: name})
			require.NoError(t, err)
			assert.Nil(t, event)
		}
	})
}

func TestConvertFromKinesisRecord(t *testing.T) {
	dynamoRecord := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change:    events.DynamoDBStreamRecord{NewImage: bookCreatedImage()},
	}
	payload, err := json.Marshal(dynamoRecord)
	require.NoError(t, err)

	event, err := ConvertFromKinesisRecord(events.KinesisEventRecord{
		EventID: "kinesis-1",
		Kinesis: events.KinesisRecord{Data: payload},
	})

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "book-1", event.AggregateID)
}

func TestBatchConvertFromKinesisEvent(t *testing.T) {
	insertRecord := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change:    events.DynamoDBStreamRecord{NewImage: bookCreatedImage()},
	}
	insertJSON, _ := json.Marshal(insertRecord)
	modifyJSON, _ := json.Marshal(events.DynamoDBEventRecord{EventName: "MODIFY"})

	kinesisEvent := events.KinesisEvent{
		Records: []events.KinesisEventRecord{
			{EventID: "1", Kinesis: events.KinesisRecord{Data: insertJSON}},
			{EventID: "2", Kinesis: events.KinesisRecord{Data: modifyJSON}},
			{EventID: "3", Kinesis: events.KinesisRecord{Data: []byte("not json")}},
		},
	}

	eventList, errs := BatchConvertFromKinesisEvent(kinesisEvent)

	assert.Len(t, eventList, 1)
	assert.Len(t, errs, 1)
	assert.Equal(t, "event-1", eventList[0].ID)
}
