package model

import (
	"strings"
	"testing"
	"time"
)

func TestParseLockReason(t *testing.T) {
	tests := []struct {
		input   string
		want    LockReason
		wantErr bool
	}{
		{"", LockReasonNone, false},
		{"  ", LockReasonNone, false},
		{"off-topic", LockReasonOffTopic, false},
		{"too heated", LockReasonTooHeated, false},
		{"resolved", LockReasonResolved, false},
		{"spam", LockReasonSpam, false},
		{"Resolved", LockReasonNone, true},
		{"too_heated", LockReasonNone, true},
		{"abuse", LockReasonNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLockReason(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLockReason(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLockReason(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLockReason(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLockReasonDisplay(t *testing.T) {
	if got := LockReasonNone.Display(); got != "none" {
		t.Errorf("LockReasonNone.Display() = %q, want %q", got, "none")
	}
	if got := LockReasonTooHeated.Display(); got != "too heated" {
		t.Errorf("LockReasonTooHeated.Display() = %q, want %q", got, "too heated")
	}
}

func TestCategoryOutputKey(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryIssues, "locked-issues"},
		{CategoryPullRequests, "locked-prs"},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		got := tt.category.OutputKey()
		if got != tt.want {
			t.Errorf("%s.OutputKey() = %q, want %q", tt.category, got, tt.want)
		}
		if seen[got] {
			t.Errorf("duplicate output key %q", got)
		}
		seen[got] = true
	}
}

func TestQuotaStatusAtOrBelow(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		buffer    int
		want      bool
	}{
		{"below buffer", 50, 100, true},
		{"equal to buffer", 100, 100, true},
		{"above buffer", 101, 100, false},
		{"zero value", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuotaStatus{Remaining: tt.remaining}
			if got := q.AtOrBelow(tt.buffer); got != tt.want {
				t.Errorf("AtOrBelow(%d) with remaining %d = %v, want %v", tt.buffer, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestNewQuotaStatus(t *testing.T) {
	reset := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	q := NewQuotaStatus("graphql", 5000, 4999, reset)

	if q.ResetHuman != "Fri, 01 Mar 2024 12:30:00 UTC" {
		t.Errorf("ResetHuman = %q", q.ResetHuman)
	}
	if q.Resource != "graphql" || q.Limit != 5000 || q.Remaining != 4999 {
		t.Errorf("unexpected status: %+v", q)
	}
}

func TestHumanResetTimeZero(t *testing.T) {
	if got := HumanResetTime(time.Time{}); got != "unknown" {
		t.Errorf("HumanResetTime(zero) = %q, want %q", got, "unknown")
	}
}

func TestRepositoryValidate(t *testing.T) {
	if err := (Repository{Owner: "octo", Name: "hello"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Repository{Owner: "octo"}).Validate(); err == nil {
		t.Error("expected error for missing name")
	}
	if err := (Repository{}).Validate(); err == nil || !strings.Contains(err.Error(), "no repository configured") {
		t.Errorf("Validate() on empty repository = %v, want not-configured error", err)
	}
	if got := (Repository{Owner: "octo", Name: "hello"}).FullName(); got != "octo/hello" {
		t.Errorf("FullName() = %q", got)
	}
}
