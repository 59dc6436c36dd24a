package alerter

import (
	"strings"
	"testing"
	"time"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/model"
)

type captureNotifier struct {
	subjects []string
	bodies   []string
}

func (n *captureNotifier) Send(subject, body string) error {
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
	return nil
}

func testRound(avg, median time.Duration, count int) model.Round {
	return model.Round{
		model.NewSubject("Simulation", "StepPhysics", []string{"float64"}): {
			Count:   count,
			Average: avg,
			Median:  median,
		},
	}
}

func TestAlerterTriggersOnThreshold(t *testing.T) {
	notifier := &captureNotifier{}
	a := NewAlerter(&config.AlerterConfig{
		Enabled: true,
		Rules: []config.AlerterRule{{
			Name:      "Slow physics step",
			Subject:   "Simulation.StepPhysics(float64)",
			Metric:    "average",
			Operator:  ">",
			Threshold: 1000,
		}},
	}, notifier)

	a.Evaluate(testRound(2000, 1800, 16))

	if len(notifier.bodies) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.bodies))
	}
	if !strings.Contains(notifier.bodies[0], "Slow physics step") {
		t.Errorf("notification body missing rule name: %q", notifier.bodies[0])
	}
	if !strings.Contains(notifier.subjects[0], "1 Triggered") {
		t.Errorf("unexpected notification subject: %q", notifier.subjects[0])
	}
}

func TestAlerterBelowThresholdStaysQuiet(t *testing.T) {
	notifier := &captureNotifier{}
	a := NewAlerter(&config.AlerterConfig{
		Rules: []config.AlerterRule{{
			Name:      "Slow physics step",
			Subject:   "Simulation.StepPhysics(float64)",
			Metric:    "average",
			Operator:  ">",
			Threshold: 1000000,
		}},
	}, notifier)

	a.Evaluate(testRound(2000, 1800, 16))

	if len(notifier.bodies) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.bodies))
	}
}

func TestAlerterIgnoresOtherSubjects(t *testing.T) {
	notifier := &captureNotifier{}
	a := NewAlerter(&config.AlerterConfig{
		Rules: []config.AlerterRule{{
			Name:      "Slow path rebuild",
			Subject:   "Simulation.RebuildPaths(int)",
			Metric:    "median",
			Operator:  ">=",
			Threshold: 1,
		}},
	}, notifier)

	a.Evaluate(testRound(2000, 1800, 16))

	if len(notifier.bodies) != 0 {
		t.Fatalf("rule for another subject must not fire, got %d notifications", len(notifier.bodies))
	}
}

func TestCheckOperators(t *testing.T) {
	cases := []struct {
		value, threshold float64
		operator         string
		want             bool
	}{
		{2, 1, ">", true},
		{1, 2, ">", false},
		{1, 2, "<", true},
		{2, 2, "=", true},
		{2, 2, ">=", true},
		{2, 2, "<=", true},
		{2, 2, "??", false},
	}
	for _, c := range cases {
		if got := check(c.value, c.threshold, c.operator); got != c.want {
			t.Errorf("check(%v, %v, %q) = %v, want %v", c.value, c.threshold, c.operator, got, c.want)
		}
	}
}
