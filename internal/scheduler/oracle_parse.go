package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Assignment is one (class, room, slot) triple proposed by the oracle.
type Assignment struct {
	ClassID string `mapstructure:"classId" json:"classId"`
	RoomID  string `mapstructure:"roomId" json:"roomId"`
	SlotID  string `mapstructure:"slotId" json:"slotId"`
}

// assignmentKeys are the object keys under which a wrapped assignment array is accepted.
var assignmentKeys = []string{"sessions", "timetable", "schedule", "assignments"}

var errUnrecognizedShape = errors.New("oracle response is neither an assignment array nor an object holding one")

// ParseAssignments decodes an oracle response. It accepts a bare JSON array of
// triples or an object carrying the array under a recognized key.
func ParseAssignments(raw string) ([]Assignment, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, errUnrecognizedShape
	}

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}

	var items []any
	switch value := decoded.(type) {
	case []any:
		items = value
	case map[string]any:
		for _, key := range assignmentKeys {
			if list, ok := value[key].([]any); ok {
				items = list
				break
			}
		}
		if items == nil {
			return nil, errUnrecognizedShape
		}
	default:
		return nil, errUnrecognizedShape
	}

	var assignments []Assignment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &assignments,
	})
	if err != nil {
		return nil, fmt.Errorf("build assignment decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode oracle assignments: %w", err)
	}
	return assignments, nil
}

// stripCodeFence removes a surrounding ``` block that chat models like to add.
func stripCodeFence(raw string) string {
	body := strings.TrimSpace(raw)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	body = strings.TrimPrefix(body, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		body = body[newline+1:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
