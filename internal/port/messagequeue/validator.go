package messagequeue

import (
	"encoding/json"
	"fmt"
)

// DecodeAction checks an approve/reject command against the ActionPayload
// schema and decodes it in one pass.
func DecodeAction(subject string, data []byte) (ActionPayload, error) {
	if !json.Valid(data) {
		return ActionPayload{}, fmt.Errorf("invalid JSON on subject %s", subject)
	}
	var p ActionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return ActionPayload{}, fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	return p, nil
}
