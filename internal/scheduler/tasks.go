package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuoteExpire = "quotes.expire"

type QuoteExpirePayload struct {
	QuoteID string `json:"quoteId"`
}

func NewQuoteExpireTask(payload QuoteExpirePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteExpire, data), nil
}

func ParseQuoteExpirePayload(task *asynq.Task) (QuoteExpirePayload, error) {
	var payload QuoteExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteExpirePayload{}, err
	}
	return payload, nil
}

// quoteExpireTaskID keeps one pending expiry task per quote.
func quoteExpireTaskID(quoteID string) string {
	return TaskQuoteExpire + ":" + quoteID
}
