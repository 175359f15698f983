// Roomie - Roommate Listing Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/roomie

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Limit  *int   `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Reason string `json:"reason" validate:"max=8"`
	Mode   string `validate:"omitempty,oneof=soft strict"`
}

func intPtr(v int) *int { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      sampleRequest
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid without limit",
			input: sampleRequest{UserID: 1},
		},
		{
			name:  "valid with limit",
			input: sampleRequest{UserID: 1, Limit: intPtr(100)},
		},
		{
			name:       "missing user id",
			input:      sampleRequest{},
			wantFields: []string{"user_id"},
			wantMsg:    "user_id is required",
		},
		{
			name:       "negative user id",
			input:      sampleRequest{UserID: -3},
			wantFields: []string{"user_id"},
			wantMsg:    "user_id must be greater than 0",
		},
		{
			name:       "limit too large",
			input:      sampleRequest{UserID: 1, Limit: intPtr(101)},
			wantFields: []string{"limit"},
			wantMsg:    "limit must be at most 100",
		},
		{
			name:       "limit zero",
			input:      sampleRequest{UserID: 1, Limit: intPtr(0)},
			wantFields: []string{"limit"},
			wantMsg:    "limit must be at least 1",
		},
		{
			name:       "string too long",
			input:      sampleRequest{UserID: 1, Reason: "far too long"},
			wantFields: []string{"reason"},
			wantMsg:    "reason must be at most 8 characters",
		},
		{
			name:       "field without json tag",
			input:      sampleRequest{UserID: 1, Mode: "lenient"},
			wantFields: []string{"Mode"},
			wantMsg:    "Mode must be one of: soft strict",
		},
		{
			name:       "multiple failures",
			input:      sampleRequest{Limit: intPtr(500)},
			wantFields: []string{"user_id", "limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			got := err.Errors()
			if len(got) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(got), len(tt.wantFields), err)
			}
			for i, f := range tt.wantFields {
				if got[i].Field != f {
					t.Errorf("error %d field = %q, want %q", i, got[i].Field, f)
				}
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	err := ValidateStruct(42)
	if err == nil {
		t.Fatal("ValidateStruct(42) should fail")
	}
	if err.Errors()[0].Field != "unknown" {
		t.Errorf("field = %q, want unknown", err.Errors()[0].Field)
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&sampleRequest{UserID: 1, Limit: intPtr(0)}).ToAPIError()
	if single.Code != CodeValidation {
		t.Errorf("Code = %q, want %q", single.Code, CodeValidation)
	}
	if single.Details["field"] != "limit" {
		t.Errorf("Details[field] = %v, want limit", single.Details["field"])
	}

	multi := ValidateStruct(&sampleRequest{Limit: intPtr(0)}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", multi.Details["fields"])
	}
	if !strings.Contains(multi.Message, "user_id is required") || !strings.Contains(multi.Message, "limit must be at least 1") {
		t.Errorf("Message = %q", multi.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}
