package optimization

import "testing"

func TestForProfile(t *testing.T) {
	if ForProfile("low").MaxClients != 10 {
		t.Errorf("low profile not selected")
	}
	if ForProfile("unknown").CommandQueueBuffer != DefaultConfig().CommandQueueBuffer {
		t.Errorf("unknown profile should fall back to default")
	}
}

func TestAnalyzeAndApply(t *testing.T) {
	snapshot := map[string]interface{}{
		"tick":      map[string]interface{}{"max_latency_ms": 80.0},
		"websocket": map[string]interface{}{"errors": int64(3)},
	}
	base := LowResourceConfig()

	rec := Analyze(snapshot)
	tuned := ApplyRecommendations(base, rec)

	if !rec.IncreaseCommandQueue || !rec.IncreaseBroadcastBuffer || rec.IncreaseDBConnections {
		t.Errorf("unexpected recommendations: %+v", rec)
	}
	if tuned.CommandQueueBuffer != 16 || tuned.ClientSendBuffer != 16 {
		t.Errorf("buffers not doubled: %+v", tuned)
	}
	if base.CommandQueueBuffer != 8 {
		t.Errorf("ApplyRecommendations must not mutate its input")
	}
}
