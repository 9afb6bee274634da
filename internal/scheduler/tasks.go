package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLookupRefresh = "lookup.refresh"

// LookupRefreshPayload names the number to look up again. Region is the
// dialing region; empty means the default region.
type LookupRefreshPayload struct {
	Number string `json:"number"`
	Region string `json:"region,omitempty"`
}

func NewLookupRefreshTask(payload LookupRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLookupRefresh, data), nil
}

func ParseLookupRefreshPayload(task *asynq.Task) (LookupRefreshPayload, error) {
	var payload LookupRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LookupRefreshPayload{}, err
	}
	return payload, nil
}
