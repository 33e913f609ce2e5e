package pipeline

import "bridgehub/pkg/models"

// AdvisoryWriter fans a generated advisory out to an external sink
// (JSONL audit trail, Redis list). Write failures are logged, never
// surfaced to the submitter: the advisory is already in the store.
type AdvisoryWriter interface {
	WriteAdvisory(adv models.Advisory) error
	Close() error
}
