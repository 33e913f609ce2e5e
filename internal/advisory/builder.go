package advisory

import (
	"fmt"
	"time"

	"bridgehub/pkg/models"
)

// Recommended action sets by severity tier. Participants match on these
// strings, so the wording and ordering are fixed.
var (
	criticalActions = []string{
		"IMMEDIATE: Flag all matching transactions for manual review",
		"IMMEDIATE: Implement temporary transaction limits on affected accounts",
		"URGENT: Notify fraud investigation team for coordinated response",
		"URGENT: Check for additional correlated patterns in recent history",
		"RECOMMENDED: Share findings with peer institutions via secure channel",
		"RECOMMENDED: Review and update fraud detection rules based on pattern",
	}
	highActions = []string{
		"URGENT: Flag matching transactions for priority review",
		"URGENT: Monitor affected accounts for additional suspicious activity",
		"RECOMMENDED: Notify fraud team for investigation",
		"RECOMMENDED: Check transaction history for similar patterns",
		"OPTIONAL: Consider enhanced authentication for affected accounts",
	}
	mediumActions = []string{
		"RECOMMENDED: Add matching transactions to review queue",
		"RECOMMENDED: Monitor accounts for pattern recurrence",
		"OPTIONAL: Alert fraud analysts for manual inspection",
		"OPTIONAL: Document pattern for future rule refinement",
	}
)

// Build converts an intent alert into the advisory participants poll
// for. Alerts are internal; advisories are external.
func Build(alert *models.IntentAlert) models.Advisory {
	return models.Advisory{
		AdvisoryID:         advisoryID(alert),
		Fingerprint:        alert.Fingerprint,
		Severity:           alert.Severity,
		FraudScore:         alert.FraudScore,
		EntityCount:        alert.EntityCount,
		Confidence:         alert.Confidence,
		Message:            message(alert),
		RecommendedActions: actionsFor(alert.Severity),
		Timestamp:          alert.Timestamp,
	}
}

func actionsFor(tier models.Tier) []string {
	var src []string
	switch tier {
	case models.TierCritical:
		src = criticalActions
	case models.TierHigh:
		src = highActions
	default:
		src = mediumActions
	}
	return append([]string(nil), src...)
}

func message(alert *models.IntentAlert) string {
	return fmt.Sprintf(
		"Collective Fraud Advisory\n\n"+
			"Severity: %s\n"+
			"Fraud Score: %d/100\n"+
			"Confidence: %s\n\n"+
			"A coordinated fraud pattern has been detected across %d "+
			"financial institutions within a %.0fs window. "+
			"This behavioral signature (Pattern ID: %s) suggests an organized "+
			"fraud operation.\n\n"+
			"PATTERN CHARACTERISTICS:\n"+
			"- Multi-entity coordination detected\n"+
			"- Rapid succession execution\n"+
			"- Behavioral anomaly correlation confirmed\n\n"+
			"PRIVACY NOTE: This advisory is based on behavioral fingerprints only. "+
			"No customer PII or transaction data has been shared between institutions.\n\n"+
			"Timestamp: %s",
		alert.Severity,
		alert.FraudScore,
		alert.Confidence,
		alert.EntityCount,
		alert.TimeSpanSeconds,
		models.ShortFingerprint(alert.Fingerprint, 12),
		alert.Timestamp.UTC().Format(time.RFC3339),
	)
}

// advisoryID encodes a coarse timestamp and a fingerprint prefix:
// ADV-YYYYMMDD-HHMMSS-FINGERPRINT[:8].
func advisoryID(alert *models.IntentAlert) string {
	prefix := alert.Fingerprint
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "ADV-" + alert.Timestamp.UTC().Format("20060102-150405") + "-" + prefix
}
