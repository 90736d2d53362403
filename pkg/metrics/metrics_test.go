package metrics

import (
	"testing"
	"time"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()

	c.RecordTick("scanning")
	c.RecordTick("scanning")
	c.RecordTick("decoded")
	c.RecordTick("")
	c.RecordDecode(10*time.Millisecond, false)
	c.RecordDecode(30*time.Millisecond, true)
	c.RecordGuidance("matched")

	s := c.Snapshot()
	if s.Ticks != 4 || s.Statuses["scanning"] != 2 || len(s.Statuses) != 2 {
		t.Errorf("unexpected ticks %d / statuses %v", s.Ticks, s.Statuses)
	}
	if s.Attempts != 2 || s.Hits != 1 || s.HitRate != 0.5 {
		t.Errorf("unexpected attempts/hits %d/%d rate %v", s.Attempts, s.Hits, s.HitRate)
	}
	if s.Notified["matched"] != 1 {
		t.Errorf("unexpected notified %v", s.Notified)
	}
	if s.LastDecode.IsZero() {
		t.Error("expected last decode time")
	}
}

func TestCollector_LatencyStats(t *testing.T) {
	c := NewCollector()
	for _, ms := range []int{10, 20, 30, 40} {
		c.RecordDecode(time.Duration(ms)*time.Millisecond, true)
	}

	s := c.Snapshot()
	if s.LatencyAvg != 25*time.Millisecond {
		t.Errorf("expected 25ms average, got %v", s.LatencyAvg)
	}
	// Sample standard deviation of 10,20,30,40 is ~12.91ms.
	if s.LatencyStd < 12*time.Millisecond || s.LatencyStd > 14*time.Millisecond {
		t.Errorf("unexpected std %v", s.LatencyStd)
	}
	if s.LatencyP95 != 40*time.Millisecond {
		t.Errorf("expected p95 40ms, got %v", s.LatencyP95)
	}
}

func TestCollector_SingleSample(t *testing.T) {
	c := NewCollector()
	c.RecordDecode(5*time.Millisecond, false)
	s := c.Snapshot()
	if s.LatencyAvg != 5*time.Millisecond || s.LatencyStd != 0 {
		t.Errorf("unexpected stats %v / %v", s.LatencyAvg, s.LatencyStd)
	}
}

func TestCollector_HistoryBounded(t *testing.T) {
	c := NewCollector()
	for i := 0; i < HistorySize+50; i++ {
		c.RecordDecode(time.Millisecond, false)
	}
	if len(c.latencies) != HistorySize {
		t.Errorf("expected %d samples, got %d", HistorySize, len(c.latencies))
	}
	if c.Snapshot().Attempts != HistorySize+50 {
		t.Error("attempts should not be bounded")
	}
}

func TestCollector_OnUpdate(t *testing.T) {
	c := NewCollector()
	got := make(chan Snapshot, 1)
	c.OnUpdate(func(s Snapshot) { got <- s })

	c.RecordDecode(time.Millisecond, true)
	select {
	case s := <-got:
		if s.Hits != 1 {
			t.Errorf("expected 1 hit, got %d", s.Hits)
		}
	case <-time.After(time.Second):
		t.Fatal("update callback not called")
	}
}

func TestCollector_Reset(t *testing.T) {
	c := NewCollector()
	c.RecordTick("x")
	c.RecordDecode(time.Millisecond, true)
	c.Reset()

	s := c.Snapshot()
	if s.Ticks != 0 || s.Attempts != 0 || s.LatencyAvg != 0 {
		t.Errorf("expected empty snapshot, got %+v", s)
	}
}

func TestSnapshot_FormatLatency(t *testing.T) {
	if got := (Snapshot{}).FormatLatency(); got != "---ms avg | ---ms std | ---ms p95" {
		t.Errorf("unexpected format %q", got)
	}
}
