package domain

import (
	"testing"
	"time"
)

func TestAuditAction_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		action AuditAction
		want   bool
	}{
		{"ActionCreate is valid", ActionCreate, true},
		{"ActionAddDependency is valid", ActionAddDependency, true},
		{"ActionCascade is valid", ActionCascade, true},
		{"ActionImport is valid", ActionImport, true},
		{"empty string is invalid", AuditAction(""), false},
		{"removed action is invalid", AuditAction("claim"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.IsValid(); got != tt.want {
				t.Errorf("AuditAction.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidAuditActions_Unique(t *testing.T) {
	seen := make(map[AuditAction]bool)
	for _, a := range ValidAuditActions {
		if seen[a] {
			t.Errorf("duplicate action %s", a)
		}
		seen[a] = true
	}
	if len(seen) != 11 {
		t.Errorf("ValidAuditActions has %d items, want 11", len(seen))
	}
}

func TestNewAuditEntry(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	entry := NewAuditEntry("tp-1234", ActionCreate, "agent-1", at)

	if entry.TaskID != "tp-1234" {
		t.Errorf("TaskID = %v, want %v", entry.TaskID, "tp-1234")
	}
	if entry.Action != ActionCreate {
		t.Errorf("Action = %v, want %v", entry.Action, ActionCreate)
	}
	if entry.ChangedBy != "agent-1" {
		t.Errorf("ChangedBy = %v, want %v", entry.ChangedBy, "agent-1")
	}
	if !entry.ChangedAt.Equal(at) {
		t.Errorf("ChangedAt = %v, want %v", entry.ChangedAt, at)
	}
	if entry.Field != nil || entry.OldValue != nil || entry.NewValue != nil {
		t.Error("optional fields should be nil")
	}
}

func TestAuditEntry_WithChange(t *testing.T) {
	entry := NewAuditEntry("tp-1234", ActionSetHours, "agent-1", time.Now()).
		WithChange("estimated_hours", "1", "2.5")

	if entry.Field == nil || *entry.Field != "estimated_hours" {
		t.Errorf("Field = %v, want estimated_hours", entry.Field)
	}
	if entry.OldValue == nil || *entry.OldValue != "1" {
		t.Errorf("OldValue = %v, want 1", entry.OldValue)
	}
	if entry.NewValue == nil || *entry.NewValue != "2.5" {
		t.Errorf("NewValue = %v, want 2.5", entry.NewValue)
	}
}

func TestAuditEntry_WithChangeLeavesEmptyValuesUnset(t *testing.T) {
	entry := NewAuditEntry("tp-1234", ActionSetDeadline, "agent-1", time.Now()).
		WithChange("deadline", "", "2024-01-15T10:00:00Z")

	if entry.OldValue != nil {
		t.Errorf("OldValue = %v, want nil", *entry.OldValue)
	}
	if entry.NewValue == nil {
		t.Fatal("NewValue should be set")
	}
}

func TestAuditFilter_Offset(t *testing.T) {
	tests := []struct {
		page, perPage, want int
	}{
		{1, 50, 0},
		{3, 20, 40},
		{0, 20, 0},
	}
	for _, tt := range tests {
		f := AuditFilter{Page: tt.page, PerPage: tt.perPage}
		if got := f.Offset(); got != tt.want {
			t.Errorf("AuditFilter{Page: %d, PerPage: %d}.Offset() = %d, want %d", tt.page, tt.perPage, got, tt.want)
		}
	}
}
