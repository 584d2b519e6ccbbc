package level

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charlie0129/batnotify/pkg/notify"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		percentage int
		want       Level
	}{
		{0, Critical},
		{14, Critical},
		{15, VeryLow},
		{24, VeryLow},
		{25, Low},
		{40, Low},
		{41, Normal},
		{60, Normal},
		{88, Normal},
		{89, High},
		{100, High},
	}
	for _, tt := range tests {
		if got := Classify(tt.percentage); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.percentage, got, tt.want)
		}
	}
}

func TestClassifyBandsAreContiguous(t *testing.T) {
	prev := Classify(0)
	changes := 0
	for p := 1; p <= 100; p++ {
		cur := Classify(p)
		if cur != prev {
			changes++
		}
		prev = cur
	}
	// Critical -> VeryLow -> Low -> Normal -> High
	if changes != 4 {
		t.Errorf("expected 4 band changes over 0..100, got %d", changes)
	}
}

func TestAlertFor(t *testing.T) {
	if _, ok := AlertFor(Normal, time.Minute); ok {
		t.Error("Normal must not have an alert")
	}

	tests := []struct {
		level   Level
		summary string
		urgency notify.Urgency
		timeout time.Duration
	}{
		{High, "High Battery Charge", notify.UrgencyLow, time.Minute},
		{Low, "Battery Low", notify.UrgencyNormal, 2 * time.Minute},
		{VeryLow, "Battery Very Low", notify.UrgencyCritical, 10 * time.Minute},
		{Critical, "Battery Critical", notify.UrgencyCritical, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			a, ok := AlertFor(tt.level, time.Minute)
			if !ok {
				t.Fatalf("no alert for %v", tt.level)
			}
			if a.Summary != tt.summary || a.Urgency != tt.urgency || a.Timeout != tt.timeout {
				t.Errorf("AlertFor(%v) = %+v", tt.level, a)
			}
		})
	}
}

func TestCriticalBodyAnnouncesDelay(t *testing.T) {
	a, _ := AlertFor(Critical, 60*time.Second)
	n := a.Notification(9)
	want := `[9%] Shutting down in 60 seconds. Run "batnotify shutdown abort" to cancel.`
	if n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}
}

func TestCriticalBodyRoundsDelayUp(t *testing.T) {
	tests := []struct {
		delay time.Duration
		want  string
	}{
		{0, "Shutting down in 0 seconds."},
		{500 * time.Millisecond, "Shutting down in 1 seconds."},
		{time.Second, "Shutting down in 1 seconds."},
		{1500 * time.Millisecond, "Shutting down in 2 seconds."},
		{90 * time.Second, "Shutting down in 90 seconds."},
	}

	for _, tt := range tests {
		a, _ := AlertFor(Critical, tt.delay)
		if !strings.HasPrefix(a.Body, tt.want) {
			t.Errorf("AlertFor(Critical, %s).Body = %q, want prefix %q", tt.delay, a.Body, tt.want)
		}
	}
}

func TestLevelJSON(t *testing.T) {
	b, err := json.Marshal(VeryLow)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"VeryLow"` {
		t.Errorf("marshal = %s", b)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"Critical"`), &l); err != nil {
		t.Fatal(err)
	}
	if l != Critical {
		t.Errorf("unmarshal = %v, want Critical", l)
	}

	if err := json.Unmarshal([]byte(`"Empty"`), &l); err == nil {
		t.Error("expected error for unknown level name")
	}
}
