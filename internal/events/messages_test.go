package events

import "testing"

func TestSliceRefreshedMessageRoundtrip(t *testing.T) {
	msg := NewSliceRefreshedMessage("alice", "2025-03", 2025)
	if msg.Kind != KindSliceRefreshed {
		t.Errorf("Kind = %q", msg.Kind)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	decoded, err := SliceRefreshedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.Tech != "alice" || decoded.Month != "2025-03" || decoded.Year != 2025 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.SavedAt.IsZero() {
		t.Error("SavedAt not set")
	}
}

func TestReportReadyMessageRoundtrip(t *testing.T) {
	msg := NewReportReadyMessage("alice", 2025, 11, 1)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	decoded, err := ReportReadyMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.Kind != KindReportReady || decoded.SuccessfulMonths != 11 || decoded.ErrorMonths != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}
