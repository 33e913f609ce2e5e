package advisory

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bridgehub/pkg/models"
)

func alertWith(tier models.Tier) *models.IntentAlert {
	return &models.IntentAlert{
		AlertID:         "ALT-20260302103000-fp_a3d7e",
		Fingerprint:     "fp_a3d7e9f2c1b5a8e4",
		Severity:        tier,
		Confidence:      models.ConfidenceHigh,
		EntityCount:     3,
		TimeSpanSeconds: 150,
		FraudScore:      75,
		Rationale:       "Pattern observed by 3 distinct participants within 150 seconds (confidence HIGH)",
		Timestamp:       time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuildAdvisoryIDAndFields(t *testing.T) {
	adv := Build(alertWith(models.TierHigh))

	if adv.AdvisoryID != "ADV-20260302-103000-fp_a3d7e" {
		t.Fatalf("unexpected advisory id: %s", adv.AdvisoryID)
	}
	if adv.Severity != models.TierHigh || adv.EntityCount != 3 || adv.FraudScore != 75 {
		t.Fatalf("alert fields not carried: %+v", adv)
	}
	if adv.Confidence != models.ConfidenceHigh {
		t.Fatalf("unexpected confidence: %s", adv.Confidence)
	}
	if !adv.Timestamp.Equal(time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", adv.Timestamp)
	}
}

func TestBuildActionsByTier(t *testing.T) {
	cases := []struct {
		tier  models.Tier
		count int
		first string
	}{
		{models.TierCritical, 6, "IMMEDIATE: Flag all matching transactions for manual review"},
		{models.TierHigh, 5, "URGENT: Flag matching transactions for priority review"},
		{models.TierMedium, 4, "RECOMMENDED: Add matching transactions to review queue"},
	}
	for _, tc := range cases {
		adv := Build(alertWith(tc.tier))
		if len(adv.RecommendedActions) != tc.count {
			t.Fatalf("tier %s: expected %d actions, got %d", tc.tier, tc.count, len(adv.RecommendedActions))
		}
		if adv.RecommendedActions[0] != tc.first {
			t.Fatalf("tier %s: unexpected first action: %q", tc.tier, adv.RecommendedActions[0])
		}
	}
}

func TestBuildMessageContents(t *testing.T) {
	adv := Build(alertWith(models.TierCritical))

	for _, want := range []string{
		"Severity: CRITICAL",
		"Fraud Score: 75/100",
		"Confidence: HIGH",
		"across 3 financial institutions",
		"within a 150s window",
		"Pattern ID: fp_a3d7e9f2c...",
		"PRIVACY NOTE",
		"Timestamp: 2026-03-02T10:30:00Z",
	} {
		if !strings.Contains(adv.Message, want) {
			t.Fatalf("message missing %q:\n%s", want, adv.Message)
		}
	}
}

func TestStoreBoundEvictsOldest(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Append(models.Advisory{AdvisoryID: fmt.Sprintf("adv-%d", i), Severity: models.TierMedium})
	}

	if s.Len() != 3 {
		t.Fatalf("expected store bounded at 3, got %d", s.Len())
	}
	recent := s.Recent(10, "")
	if len(recent) != 3 {
		t.Fatalf("expected 3 advisories, got %d", len(recent))
	}
	if recent[0].AdvisoryID != "adv-4" || recent[2].AdvisoryID != "adv-2" {
		t.Fatalf("expected newest-first order with oldest evicted, got %+v", recent)
	}
}

func TestStoreRecentFiltersBySeverity(t *testing.T) {
	s := NewStore(10)
	s.Append(models.Advisory{AdvisoryID: "a1", Severity: models.TierMedium})
	s.Append(models.Advisory{AdvisoryID: "a2", Severity: models.TierCritical})
	s.Append(models.Advisory{AdvisoryID: "a3", Severity: models.TierMedium})

	got := s.Recent(10, models.TierMedium)
	if len(got) != 2 || got[0].AdvisoryID != "a3" || got[1].AdvisoryID != "a1" {
		t.Fatalf("unexpected filtered result: %+v", got)
	}

	if got := s.Recent(1, ""); len(got) != 1 || got[0].AdvisoryID != "a3" {
		t.Fatalf("limit not applied newest-first: %+v", got)
	}
}

func TestStoreForFingerprintAndGet(t *testing.T) {
	s := NewStore(10)
	s.Append(models.Advisory{AdvisoryID: "a1", Fingerprint: "fp1"})
	s.Append(models.Advisory{AdvisoryID: "a2", Fingerprint: "fp2"})
	s.Append(models.Advisory{AdvisoryID: "a3", Fingerprint: "fp1"})

	got := s.ForFingerprint("fp1")
	if len(got) != 2 || got[0].AdvisoryID != "a1" || got[1].AdvisoryID != "a3" {
		t.Fatalf("unexpected fingerprint advisories: %+v", got)
	}

	if adv, ok := s.Get("a2"); !ok || adv.Fingerprint != "fp2" {
		t.Fatalf("expected to find a2, got %+v ok=%v", adv, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("did not expect to find missing advisory")
	}
}
