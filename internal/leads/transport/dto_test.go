package transport

import (
	"encoding/json"
	"testing"
)

func topLevelKeys(t *testing.T, v any) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	keys := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return keys
}

func TestSingleLeadBodiesAreKeyed(t *testing.T) {
	keys := topLevelKeys(t, LeadEnvelope{})
	if _, ok := keys["lead"]; !ok || len(keys) != 1 {
		t.Fatalf("expected a single \"lead\" key, got %v", keys)
	}

	keys = topLevelKeys(t, LeadDetailEnvelope{})
	if _, ok := keys["lead"]; !ok || len(keys) != 1 {
		t.Fatalf("expected a single \"lead\" key, got %v", keys)
	}
}

func TestStatsBodyIsKeyed(t *testing.T) {
	keys := topLevelKeys(t, StatsEnvelope{})
	if _, ok := keys["stats"]; !ok || len(keys) != 1 {
		t.Fatalf("expected a single \"stats\" key, got %v", keys)
	}
}

func TestCaptureBodyKeepsNullLead(t *testing.T) {
	data, err := json.Marshal(CaptureResponse{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"lead":null}` {
		t.Fatalf("expected explicit null lead, got %s", data)
	}
}
