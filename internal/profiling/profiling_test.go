package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulatesUntilReset(t *testing.T) {
	ResetFrame()
	Track("a")()
	Track("a")()
	Track("b")()

	if got := Calls("a"); got != 2 {
		t.Fatalf("calls(a) = %d, want 2", got)
	}
	if _, ok := Snapshot()["b"]; !ok {
		t.Fatalf("snapshot misses b")
	}
	if s := TopN(5); !strings.Contains(s, "a:") || !strings.Contains(s, "b:") {
		t.Fatalf("TopN = %q", s)
	}

	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatalf("reset left entries behind")
	}
}

func TestObserverReceivesTrackedSections(t *testing.T) {
	var names []string
	SetObserver(func(name string, d time.Duration) {
		if d < 0 {
			t.Errorf("negative duration for %s", name)
		}
		names = append(names, name)
	})
	defer SetObserver(nil)

	Track("renderer.render")()
	Track("chunks.update")()
	if len(names) != 2 || names[0] != "renderer.render" || names[1] != "chunks.update" {
		t.Fatalf("observed %v", names)
	}
}
