package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sonntkms/taskapproval/internal/domain/approval"
)

var orchestratorStart = time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

func TestApprovalOrchestrator_Outcomes(t *testing.T) {
	approved := approval.Result{IsApproved: true}
	rejected := approval.Result{IsApproved: false}

	tests := []struct {
		name         string
		event        *approval.Result
		want         approval.Outcome
		wantApproved int
		wantRejected int
	}{
		{"approved", &approved, approval.OutcomeApproved, 1, 0},
		{"rejected", &rejected, approval.OutcomeRejected, 0, 1},
		{"timed out", nil, approval.OutcomeTimedOut, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			octx := &scriptedContext{now: orchestratorStart, event: tt.event}
			o := NewApprovalOrchestrator(func() string { return "6" })

			got, err := o.Run(octx, validRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
			if n := octx.count(approval.ActivityStartedNotification); n != 1 {
				t.Errorf("expected 1 started notification, got %d", n)
			}
			if n := octx.count(approval.ActivityApprovedNotification); n != tt.wantApproved {
				t.Errorf("expected %d approved notifications, got %d", tt.wantApproved, n)
			}
			if n := octx.count(approval.ActivityRejectedNotification); n != tt.wantRejected {
				t.Errorf("expected %d rejected notifications, got %d", tt.wantRejected, n)
			}
			if octx.activities[0] != approval.ActivityStartedNotification {
				t.Errorf("started notification must come first, got %v", octx.activities)
			}
			if octx.waitedFor != approval.EventName {
				t.Errorf("expected wait on %s, got %s", approval.EventName, octx.waitedFor)
			}
		})
	}
}

func TestApprovalOrchestrator_TimeoutWindow(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		months  int
	}{
		{"configured", "3", 3},
		{"default on garbage", "abc", 6},
		{"default on empty", "", 6},
		{"default on zero", "0", 6},
		{"default on negative", "-2", 6},
		{"padded", " 12 ", 12},
		{"upper bound", "1200", 1200},
		{"default above upper bound", "1201", 6},
		{"default on huge value", "100000", 6},
		{"default on max int64", "9223372036854775807", 6},
		{"default on int overflow", "99999999999999999999", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			octx := &scriptedContext{now: orchestratorStart}
			o := NewApprovalOrchestrator(func() string { return tt.setting })

			if _, err := o.Run(octx, validRequest()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := orchestratorStart.AddDate(0, tt.months, 0).Sub(orchestratorStart)
			if octx.waitTimeout != want {
				t.Errorf("timeout = %v, want %v", octx.waitTimeout, want)
			}
			if octx.waitTimeout <= 0 {
				t.Errorf("timeout must be positive, got %v", octx.waitTimeout)
			}
			if octx.sideEffects != 1 {
				t.Errorf("setting must be read through exactly one side effect, got %d", octx.sideEffects)
			}
		})
	}
}

func TestApprovalOrchestrator_NilSettingUsesDefault(t *testing.T) {
	octx := &scriptedContext{now: orchestratorStart}
	if _, err := NewApprovalOrchestrator(nil).Run(octx, validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := orchestratorStart.AddDate(0, 6, 0).Sub(orchestratorStart)
	if octx.waitTimeout != want {
		t.Errorf("timeout = %v, want %v", octx.waitTimeout, want)
	}
}

func TestApprovalOrchestrator_StartedNotificationFailure(t *testing.T) {
	sendErr := errors.New("retries exhausted")
	octx := &scriptedContext{
		now:         orchestratorStart,
		activityErr: map[string]error{approval.ActivityStartedNotification: sendErr},
	}

	_, err := NewApprovalOrchestrator(nil).Run(octx, validRequest())
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected activity error, got %v", err)
	}
	if octx.waitedFor != "" {
		t.Fatal("must not wait when the started notification failed")
	}
}

func TestApprovalOrchestrator_TerminalNotificationFailure(t *testing.T) {
	sendErr := errors.New("retries exhausted")
	approved := approval.Result{IsApproved: true}
	octx := &scriptedContext{
		now:         orchestratorStart,
		event:       &approved,
		activityErr: map[string]error{approval.ActivityApprovedNotification: sendErr},
	}

	got, err := NewApprovalOrchestrator(nil).Run(octx, validRequest())
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected activity error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no outcome on failure, got %s", got)
	}
}

func TestApprovalOrchestrator_WaitError(t *testing.T) {
	waitErr := errors.New("canceled")
	octx := &scriptedContext{now: orchestratorStart, waitErr: waitErr}

	_, err := NewApprovalOrchestrator(nil).Run(octx, validRequest())
	if !errors.Is(err, waitErr) {
		t.Fatalf("expected wait error, got %v", err)
	}
	if len(octx.activities) != 1 {
		t.Fatalf("only the started notification should run, got %v", octx.activities)
	}
}

func TestParseTimeoutMonths(t *testing.T) {
	tests := map[string]int{
		"1":   1,
		"6":   6,
		"24":  24,
		"":    6,
		"x":   6,
		"1.5": 6,
		"0":   6,
		"-1":  6,

		"1200":                1200,
		"1201":                6,
		"100000":              6,
		"9223372036854775807": 6,
	}
	for in, want := range tests {
		if got := ParseTimeoutMonths(in); got != want {
			t.Errorf("ParseTimeoutMonths(%q) = %d, want %d", in, got, want)
		}
	}
}
