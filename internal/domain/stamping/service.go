package stamping

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/phdi/tcr/internal/domain/reference"
	"github.com/phdi/tcr/internal/platform/fhir"
)

// CodeResolver resolves a condition code into its reportable code set.
type CodeResolver interface {
	ValueSets(ctx context.Context, snomedCode interface{}, filter interface{}) (reference.ReportableCodeSet, error)
}

// NameLookup returns the human-readable name of a condition.
type NameLookup interface {
	ConditionName(ctx context.Context, snomedCode string) (string, error)
}

// Service stamps FHIR bundles with reportable condition extensions.
type Service struct {
	codes  CodeResolver
	names  NameLookup
	logger zerolog.Logger
}

// NewService creates a new stamping service.
func NewService(codes CodeResolver, names NameLookup, logger zerolog.Logger) *Service {
	return &Service{codes: codes, names: names, logger: logger}
}

// Stamp appends the condition-code extension for snomedCode to r. When r has
// a code element marking it as a SNOMED "Condition", the condition's name is
// looked up and written to valueCodeableConcept.text; a missing name leaves
// the resource otherwise untouched.
func (s *Service) Stamp(ctx context.Context, r fhir.Resource, snomedCode string) error {
	fhir.AddConditionExtension(r, snomedCode)

	if !fhir.HasCodeElement(r) || !fhir.IsConditionTyped(r) {
		return nil
	}
	name, err := s.names.ConditionName(ctx, snomedCode)
	if errors.Is(err, reference.ErrNotFound) {
		s.logger.Debug().Str("condition", snomedCode).Str("resource_id", r.ID()).Msg("no condition name, skipping enrichment")
		return nil
	}
	if err != nil {
		return fmt.Errorf("name lookup for %s: %w", snomedCode, err)
	}
	fhir.SetValueText(r, name)
	return nil
}

// StampBundle stamps every entry whose clinical codes intersect the
// reportable codes of one of snomedCodes. Entries are visited in order, and
// a resource matching several codes is stamped once per code. Reportable
// sets are resolved once per call.
func (s *Service) StampBundle(ctx context.Context, b *fhir.Bundle, snomedCodes []string) (*fhir.Bundle, error) {
	reportable := make(map[string]map[string]struct{}, len(snomedCodes))
	for _, code := range snomedCodes {
		set, err := s.codes.ValueSets(ctx, code, nil)
		if err != nil {
			return nil, fmt.Errorf("resolve codes for %s: %w", code, err)
		}
		reportable[code] = set.Codes()
	}

	stamped := 0
	for _, r := range b.Resources() {
		codes := fhir.ExtractCodes(r)
		if len(codes) == 0 {
			continue
		}
		for _, condition := range snomedCodes {
			if !intersects(codes, reportable[condition]) {
				continue
			}
			if err := s.Stamp(ctx, r, condition); err != nil {
				return nil, err
			}
			stamped++
		}
	}
	s.logger.Debug().Strs("conditions", snomedCodes).Int("stamps", stamped).Msg("stamped bundle")
	return b, nil
}

// StampConditions finds the conditions named by the bundle's Reportability
// Response and stamps the bundle with them. The triggering codes are returned
// alongside the bundle.
func (s *Service) StampConditions(ctx context.Context, b *fhir.Bundle) (*fhir.Bundle, []string, error) {
	conditions := fhir.FindTriggeringConditions(b)
	out, err := s.StampBundle(ctx, b, conditions)
	if err != nil {
		return nil, conditions, err
	}
	return out, conditions, nil
}

func intersects(codes []string, set map[string]struct{}) bool {
	for _, c := range codes {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}
