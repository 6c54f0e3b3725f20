package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{SessionPlanned, SessionConfirmed, true},
		{SessionPlanned, SessionCancelled, true},
		{SessionPlanned, SessionInProgress, false},
		{SessionPlanned, SessionCompleted, false},
		{SessionConfirmed, SessionInProgress, true},
		{SessionConfirmed, SessionCancelled, true},
		{SessionConfirmed, SessionCompleted, false},
		{SessionInProgress, SessionCompleted, true},
		{SessionInProgress, SessionCancelled, true},
		{SessionInProgress, SessionConfirmed, false},
		{SessionCompleted, SessionCancelled, false},
		{SessionCompleted, SessionPlanned, false},
		{SessionCancelled, SessionPlanned, false},
		{SessionCancelled, SessionConfirmed, false},
		// Re-applying the current status is a no-op.
		{SessionCompleted, SessionCompleted, true},
		{SessionCancelled, SessionCancelled, true},
		{SessionPlanned, SessionPlanned, true},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{SessionPlanned, SessionConfirmed, SessionInProgress} {
		if IsTerminalStatus(s) {
			t.Errorf("IsTerminalStatus(%s) = true, want false", s)
		}
	}
	for _, s := range []string{SessionCompleted, SessionCancelled} {
		if !IsTerminalStatus(s) {
			t.Errorf("IsTerminalStatus(%s) = false, want true", s)
		}
	}
}

func TestSessionOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := &Session{StartAt: base, EndAt: base.Add(3 * time.Hour)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", base.Add(time.Hour), base.Add(2 * time.Hour), true},
		{"straddles start", base.Add(-time.Hour), base.Add(time.Hour), true},
		{"straddles end", base.Add(2 * time.Hour), base.Add(5 * time.Hour), true},
		{"covers", base.Add(-time.Hour), base.Add(5 * time.Hour), true},
		{"ends at start", base.Add(-2 * time.Hour), base, false},
		{"starts at end", base.Add(3 * time.Hour), base.Add(5 * time.Hour), false},
		{"well before", base.Add(-5 * time.Hour), base.Add(-4 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := session.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedicallyEligible(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fit := MedicalFit
	restricted := MedicalFitRestricted
	unfit := MedicalUnfit
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 6, 0)

	tests := []struct {
		name   string
		status *string
		exam   *time.Time
		want   bool
	}{
		{"no record", nil, nil, true},
		{"fit, no exam date", &fit, nil, true},
		{"fit, exam upcoming", &fit, &future, true},
		{"fit, exam overdue", &fit, &past, false},
		{"restricted still eligible", &restricted, &future, true},
		{"unfit", &unfit, &future, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Personnel{MedicalStatus: tt.status, MedicalNextExam: tt.exam}
			if got := p.MedicallyEligible(now); got != tt.want {
				t.Errorf("MedicallyEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
