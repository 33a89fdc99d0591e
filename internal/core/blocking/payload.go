package blocking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TriggerKind distinguishes the two triggers scheduled per window.
type TriggerKind string

const (
	KindStart TriggerKind = "start"
	KindEnd   TriggerKind = "end"
)

// TriggerNamespace prefixes every trigger id owned by the scheduling engine.
const TriggerNamespace = "focusguard.block."

// Payload is carried by a wake trigger. It holds everything needed to act on
// delivery without reaching the task source.
type Payload struct {
	Kind      TriggerKind `json:"kind"`
	TaskID    string      `json:"task_id"`
	Title     string      `json:"title"`
	WindowEnd time.Time   `json:"window_end"`
}

// EncodePayload serializes a payload for the wake scheduler.
func EncodePayload(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses and validates a delivered payload.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.Kind != KindStart && p.Kind != KindEnd {
		return Payload{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, p.Kind)
	}
	if p.TaskID == "" {
		return Payload{}, fmt.Errorf("%w: missing task id", ErrMalformedPayload)
	}
	if p.WindowEnd.IsZero() {
		return Payload{}, fmt.Errorf("%w: missing window end", ErrMalformedPayload)
	}
	return p, nil
}

// TriggerID returns the trigger id for one side of a task's window.
func TriggerID(taskID string, kind TriggerKind) string {
	return TriggerNamespace + taskID + "." + string(kind)
}

// TriggerIDsForTask returns both trigger ids of a task.
func TriggerIDsForTask(taskID string) []string {
	return []string{TriggerID(taskID, KindStart), TriggerID(taskID, KindEnd)}
}

// OwnsTrigger reports whether id belongs to the scheduling engine's namespace.
func OwnsTrigger(id string) bool {
	return strings.HasPrefix(id, TriggerNamespace)
}

// OwnedTriggers filters ids down to those in the engine namespace.
func OwnedTriggers(ids []string) []string {
	var owned []string
	for _, id := range ids {
		if OwnsTrigger(id) {
			owned = append(owned, id)
		}
	}
	return owned
}
