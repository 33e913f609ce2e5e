package escalator

import (
	"strings"
	"testing"
	"time"

	"bridgehub/pkg/models"
)

func fixedClock() func() time.Time {
	base := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func corrWith(entities int, span float64, conf models.Confidence) *models.Correlation {
	return &models.Correlation{
		Fingerprint:     "fp_a3d7e9f2c1b5a8e4",
		EntityCount:     entities,
		TimeSpanSeconds: span,
		Confidence:      conf,
	}
}

func TestEvaluateTiers(t *testing.T) {
	e := New(Config{}, fixedClock())

	cases := []struct {
		entities int
		want     models.Tier
		none     bool
	}{
		{1, "", true},
		{2, models.TierMedium, false},
		{3, models.TierHigh, false},
		{4, models.TierCritical, false},
		{9, models.TierCritical, false},
	}
	for _, tc := range cases {
		alert := e.Evaluate(corrWith(tc.entities, 60, models.ConfidenceMedium), models.SeverityMedium)
		if tc.none {
			if alert != nil {
				t.Fatalf("entities=%d: expected no alert, got %+v", tc.entities, alert)
			}
			continue
		}
		if alert == nil {
			t.Fatalf("entities=%d: expected alert", tc.entities)
		}
		if alert.Severity != tc.want {
			t.Fatalf("entities=%d: expected tier %s, got %s", tc.entities, tc.want, alert.Severity)
		}
	}
}

func TestEvaluatePopulatesAlertFields(t *testing.T) {
	e := New(Config{}, fixedClock())

	alert := e.Evaluate(corrWith(3, 150, models.ConfidenceHigh), models.SeverityHigh)
	if alert == nil {
		t.Fatalf("expected alert")
	}
	if alert.AlertID != "ALT-20260302103000-fp_a3d7e" {
		t.Fatalf("unexpected alert id: %s", alert.AlertID)
	}
	if alert.Rationale != "Pattern observed by 3 distinct participants within 150 seconds (confidence HIGH)" {
		t.Fatalf("unexpected rationale: %q", alert.Rationale)
	}
	if alert.EntityCount != 3 || alert.TimeSpanSeconds != 150 {
		t.Fatalf("correlation fields not carried: %+v", alert)
	}
	if !strings.HasPrefix(alert.AlertID, "ALT-") {
		t.Fatalf("alert id missing prefix: %s", alert.AlertID)
	}
}

func TestFraudScoreComputation(t *testing.T) {
	cases := []struct {
		name      string
		entities  int
		span      float64
		conf      models.Confidence
		submitted models.Severity
		want      int
	}{
		{"two entities medium confidence", 2, 60, models.ConfidenceMedium, models.SeverityMedium, 45},
		{"severity high bonus", 2, 60, models.ConfidenceMedium, models.SeverityHigh, 50},
		{"severity low penalty", 2, 60, models.ConfidenceMedium, models.SeverityLow, 40},
		{"base caps at 80", 10, 60, models.ConfidenceHigh, models.SeverityCritical, 100},
		{"slow span penalized", 2, 601, models.ConfidenceLow, models.SeverityMedium, 30},
		{"clamped at 100", 4, 60, models.ConfidenceHigh, models.SeverityCritical, 100},
		{"critical four entities", 4, 100, models.ConfidenceHigh, models.SeverityHigh, 95},
	}
	for _, tc := range cases {
		got := FraudScore(corrWith(tc.entities, tc.span, tc.conf), tc.submitted)
		if got != tc.want {
			t.Fatalf("%s: expected score %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestFraudScoreBoundsAndMonotonicity(t *testing.T) {
	severities := []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}
	confidences := []models.Confidence{models.ConfidenceLow, models.ConfidenceMedium, models.ConfidenceHigh}

	for _, sev := range severities {
		for _, conf := range confidences {
			prev := -1
			for entities := 0; entities <= 12; entities++ {
				got := FraudScore(corrWith(entities, 700, conf), sev)
				if got < 0 || got > 100 {
					t.Fatalf("score out of range: %d", got)
				}
				if got < prev {
					t.Fatalf("score not monotone in entity count: %d after %d", got, prev)
				}
				prev = got
			}
		}
	}
}
