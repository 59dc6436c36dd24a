package alerter

import (
	"fmt"
	"log"
	"strings"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/model"
)

// Alerter evaluates each snapshot round against the configured latency
// rules and sends one consolidated notification for every round that
// triggers at least one rule.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier) *Alerter {
	return &Alerter{rules: cfg.Rules, notifier: notifier}
}

// Evaluate checks one round against all rules. A rule matches a subject by
// its rendered "Type.Method(params)" name; its metric is one of count,
// average or median, with duration thresholds in nanoseconds.
func (a *Alerter) Evaluate(round model.Round) {
	var triggeredMessages []string

	for subject, snap := range round {
		name := subject.String()
		for _, rule := range a.rules {
			if rule.Subject != name {
				continue
			}

			var currentValue float64
			var unit string
			switch rule.Metric {
			case "count":
				currentValue = float64(snap.Count)
				unit = "samples"
			case "average":
				currentValue = float64(snap.Average)
				unit = "ns"
			case "median":
				currentValue = float64(snap.Median)
				unit = "ns"
			default:
				log.Printf("Warning: unknown metric '%s' in alerter rule '%s'", rule.Metric, rule.Name)
				continue
			}

			if !check(currentValue, rule.Threshold, rule.Operator) {
				continue
			}

			msg := fmt.Sprintf("Alert: %s\n  Subject: %s\n  Metric: %s\n  Condition: %s %.2f\n  Observed Value: %.0f %s\n",
				rule.Name, name, rule.Metric, rule.Operator, rule.Threshold, currentValue, unit)
			triggeredMessages = append(triggeredMessages, msg)
		}
	}

	if len(triggeredMessages) == 0 {
		return // No alerts triggered, do nothing
	}

	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(triggeredMessages))

	if a.notifier == nil {
		return
	}

	subject := fmt.Sprintf("SkyTools Latency Alert Summary (%d Triggered)", len(triggeredMessages))
	body := "The following alerts were triggered by the last snapshot round:\n\n" +
		strings.Join(triggeredMessages, "\n")

	if err := a.notifier.Send(subject, body); err != nil {
		log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
	} else {
		log.Printf("INFO: Consolidated alert notification sent successfully.")
	}
}

// check compares a value against a threshold based on an operator.
func check(value, threshold float64, operator string) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		log.Printf("Warning: unknown operator '%s' in alerter rule", operator)
		return false
	}
}
