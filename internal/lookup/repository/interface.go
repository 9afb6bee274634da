package repository

import "context"

// SpamThreshold is the number of reports after which a number counts as spam.
const SpamThreshold = 3

// Status is what the blocklist and spam reports say about one number.
type Status struct {
	Blocked     bool
	SpamReports int
}

// IsSpam reports whether enough users flagged the number.
func (s Status) IsSpam() bool {
	return s.SpamReports >= SpamThreshold
}

// StatusReader reads block and spam state for normalized numbers.
type StatusReader interface {
	Status(ctx context.Context, normalized string) (Status, error)
}

// StatusWriter records block and spam state.
type StatusWriter interface {
	Block(ctx context.Context, normalized string) error
	Unblock(ctx context.Context, normalized string) error
	ReportSpam(ctx context.Context, normalized string) (int, error)
}

// Repository combines all number status operations.
type Repository interface {
	StatusReader
	StatusWriter
}
