package reference

import "context"

// ConceptRepository resolves the value set evidence mapped to a condition.
type ConceptRepository interface {
	ResolveByCondition(ctx context.Context, conditionID string) ([]*GroupedConcepts, error)
	Ping(ctx context.Context) error
}

// ConditionNameRepository provides human-readable condition names.
type ConditionNameRepository interface {
	NameByCondition(ctx context.Context, conditionID string) (string, error)
	Ping(ctx context.Context) error
}

// ConditionWriter loads reference conditions. Only the seed command writes.
type ConditionWriter interface {
	UpsertCondition(ctx context.Context, c *Condition) error
}

// ConditionStore is the RCKMS store: name lookups plus seed writes.
type ConditionStore interface {
	ConditionNameRepository
	ConditionWriter
}
