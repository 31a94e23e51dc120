package reference

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Service resolves reportable code sets and condition names from the
// reference stores.
type Service struct {
	concepts ConceptRepository
	names    ConditionNameRepository
	logger   zerolog.Logger
}

// NewService creates a new reference service.
func NewService(concepts ConceptRepository, names ConditionNameRepository, logger zerolog.Logger) *Service {
	return &Service{concepts: concepts, names: names, logger: logger}
}

// ResolveCodes returns the (value set type, codes, system) rows that count as
// reportable evidence for a single SNOMED condition code. A group carrying
// ICD-9 crosswalk hits is emitted twice: once as stored and once with the
// crosswalk codes under the ICD-9-CM system. An unknown condition yields an
// empty slice.
func (s *Service) ResolveCodes(ctx context.Context, snomedCode interface{}) ([]ConceptRow, error) {
	code, err := RequireSingleCode(snomedCode)
	if err != nil {
		return nil, err
	}
	groups, err := s.concepts.ResolveByCondition(ctx, code[0])
	if err != nil {
		return nil, storageErr("resolve concepts", err)
	}
	rows := make([]ConceptRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, ConceptRow{ValueSetType: g.ValueSetType, Codes: g.Codes, System: g.System})
		if g.Crosswalk != "" {
			rows = append(rows, ConceptRow{ValueSetType: g.ValueSetType, Codes: g.Crosswalk, System: SystemICD9})
		}
	}
	s.logger.Debug().Str("condition", code[0]).Int("rows", len(rows)).Msg("resolved reportable codes")
	return rows, nil
}

// ValueSets resolves a condition code into its reportable code set, keeping
// only the value set types named by filter when one is given.
func (s *Service) ValueSets(ctx context.Context, snomedCode interface{}, filter interface{}) (ReportableCodeSet, error) {
	rows, err := s.ResolveCodes(ctx, snomedCode)
	if err != nil {
		return nil, err
	}
	return ToGroupedMap(rows, filter)
}

// ConditionName looks up the human-readable name of a condition.
func (s *Service) ConditionName(ctx context.Context, snomedCode string) (string, error) {
	name, err := s.names.NameByCondition(ctx, snomedCode)
	if errors.Is(err, ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", storageErr("condition name lookup", err)
	}
	return name, nil
}

// Ping checks both reference stores.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.concepts.Ping(ctx); err != nil {
		return storageErr("ping eRSD store", err)
	}
	if err := s.names.Ping(ctx); err != nil {
		return storageErr("ping RCKMS store", err)
	}
	return nil
}

// ToGroupedMap splits each row's codes and groups the rows by value set type.
// Rows sharing a type but not a system stay separate groups, in row order.
// A non-empty filter (string, delimited string or list) drops every type it
// does not name.
func ToGroupedMap(rows []ConceptRow, filter interface{}) (ReportableCodeSet, error) {
	out := make(ReportableCodeSet)
	for _, r := range rows {
		out[r.ValueSetType] = append(out[r.ValueSetType], ConceptGroup{
			Codes:  splitCodes(r.Codes),
			System: r.System,
		})
	}
	if filter == nil {
		return out, nil
	}
	keep, err := Normalize(filter)
	if err != nil {
		return nil, err
	}
	if len(keep) == 0 {
		return out, nil
	}
	wanted := make(map[string]bool, len(keep))
	for _, t := range keep {
		wanted[t] = true
	}
	for t := range out {
		if !wanted[t] {
			delete(out, t)
		}
	}
	return out, nil
}
