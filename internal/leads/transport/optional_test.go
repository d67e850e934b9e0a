package transport

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestOptionalUUIDDistinguishesAbsentFromNull(t *testing.T) {
	assignee := uuid.New()

	cases := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *uuid.UUID
		wantErr   bool
	}{
		{"absent field", `{}`, false, nil, false},
		{"explicit null clears", `{"assignedTo":null}`, true, nil, false},
		{"empty string clears", `{"assignedTo":""}`, true, nil, false},
		{"valid id assigns", `{"assignedTo":"` + assignee.String() + `"}`, true, &assignee, false},
		{"garbage rejected", `{"assignedTo":"not-a-uuid"}`, true, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateLeadRequest
			err := json.Unmarshal([]byte(tc.body), &req)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected a decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if req.AssignedTo.Set != tc.wantSet {
				t.Fatalf("expected Set=%v, got %v", tc.wantSet, req.AssignedTo.Set)
			}
			if tc.wantValue == nil {
				if req.AssignedTo.Value != nil {
					t.Fatalf("expected cleared value, got %v", req.AssignedTo.Value)
				}
				return
			}
			if req.AssignedTo.Value == nil || *req.AssignedTo.Value != *tc.wantValue {
				t.Fatalf("expected %s, got %v", tc.wantValue, req.AssignedTo.Value)
			}
		})
	}
}
