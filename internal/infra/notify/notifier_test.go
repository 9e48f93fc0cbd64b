package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/infra/notify"
)

type capturedRecord struct {
	key     string
	payload []byte
	headers map[string]string
}

type capturePublisher struct {
	records []capturedRecord
}

func (p *capturePublisher) Publish(_ context.Context, key string, payload []byte, headers map[string]string) error {
	p.records = append(p.records, capturedRecord{key: key, payload: payload, headers: headers})
	return nil
}

func TestKafkaNotifierRecordShape(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := &notify.KafkaNotifier{Publisher: publisher}

	occurred := time.Date(2026, 5, 3, 10, 30, 0, 0, time.UTC)
	event := reservation.DepositReceived{
		ReservationID: "res-42",
		Amount:        money.Must(185500, "USD"),
		DueDate:       time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
		At:            occurred,
	}

	require.NoError(t, notifier.Notify(context.Background(), event))
	require.Len(t, publisher.records, 1)

	record := publisher.records[0]
	assert.Equal(t, "res-42", record.key, "records are keyed by reservation for partition ordering")
	assert.Equal(t, "application/cloudevents+json", record.headers["content-type"])

	var envelope struct {
		SpecVersion string    `json:"specversion"`
		ID          string    `json:"id"`
		Type        string    `json:"type"`
		Source      string    `json:"source"`
		Time        time.Time `json:"time"`
		Data        struct {
			ReservationID string `json:"reservation_id"`
			Amount        struct {
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"amount"`
			DueDate time.Time `json:"due_date"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(record.payload, &envelope))
	assert.Equal(t, "1.0", envelope.SpecVersion)
	assert.NotEmpty(t, envelope.ID)
	assert.Equal(t, "reservation.deposit_received.v1", envelope.Type)
	assert.Equal(t, "app://stayhub", envelope.Source)
	assert.True(t, envelope.Time.Equal(occurred), "envelope time is the event occurrence, not publish time")
	assert.Equal(t, "res-42", envelope.Data.ReservationID)
	assert.Equal(t, int64(185500), envelope.Data.Amount.Amount)
	assert.Equal(t, "USD", envelope.Data.Amount.Currency)
	assert.True(t, envelope.Data.DueDate.Equal(time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)))
}

func TestKafkaNotifierCarriesRefundDetails(t *testing.T) {
	publisher := &capturePublisher{}
	notifier := &notify.KafkaNotifier{Publisher: publisher}

	event := reservation.Cancelled{
		ReservationID: "res-7",
		Reason:        "change of plans",
		RefundPercent: 50,
		Refund:        money.Must(92750, "USD"),
		At:            time.Date(2026, 6, 5, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, notifier.Notify(context.Background(), event))
	require.Len(t, publisher.records, 1)

	var envelope struct {
		Type string `json:"type"`
		Data struct {
			Reason        string `json:"reason"`
			RefundPercent int    `json:"refund_percent"`
			Refund        struct {
				Amount int64 `json:"amount"`
			} `json:"refund"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(publisher.records[0].payload, &envelope))
	assert.Equal(t, "reservation.cancelled.v1", envelope.Type)
	assert.Equal(t, "change of plans", envelope.Data.Reason)
	assert.Equal(t, 50, envelope.Data.RefundPercent)
	assert.Equal(t, int64(92750), envelope.Data.Refund.Amount)
}
