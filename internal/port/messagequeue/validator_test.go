package messagequeue

import (
	"strings"
	"testing"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr string
	}{
		{"instance id", `{"instanceId":"approval-1"}`, "approval-1", ""},
		{"extra fields ignored", `{"instanceId":"approval-2","note":"x"}`, "approval-2", ""},
		{"missing id decodes empty", `{}`, "", ""},
		{"invalid json", `{not json`, "", "invalid JSON"},
		{"wrong field type", `{"instanceId":42}`, "", "schema validation failed"},
		{"array instead of object", `[1,2]`, "", "schema validation failed"},
		{"empty body", ``, "", "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeAction(SubjectActionReject, []byte(tt.data))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				if p.InstanceID != "" {
					t.Errorf("payload on error = %+v, want zero", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.InstanceID != tt.want {
				t.Errorf("instanceId = %q, want %q", p.InstanceID, tt.want)
			}
		})
	}
}
