package fhir

import (
	"sort"
	"strings"
)

// ReportabilityResponseSectionTitle is the title of the Composition section
// listing the conditions a Reportability Response found reportable.
const ReportabilityResponseSectionTitle = "Reportability Response Information Section"

// FindTriggeringConditions returns the SNOMED codes of the conditions that
// triggered reporting, sorted and deduplicated.
//
// Two fixed queries replace a general path evaluator:
//
//	Composition.section.where(title = RR section).entry.reference
//	<Type>.where(id = <id>).valueCodeableConcept.coding.where(system = SNOMED).code.first()
//
// References that are malformed, point at missing resources, or whose target
// carries no SNOMED coding are skipped.
func FindTriggeringConditions(b *Bundle) []string {
	seen := map[string]struct{}{}
	for _, ref := range reportabilityReferences(b) {
		resourceType, id, ok := splitReference(ref.Reference)
		if !ok {
			continue
		}
		target, ok := b.Lookup(resourceType, id)
		if !ok {
			continue
		}
		if code := firstCode(target.Raw(), "valueCodeableConcept", SystemSNOMED); code != "" {
			seen[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func reportabilityReferences(b *Bundle) []Reference {
	var refs []Reference
	for _, comp := range b.Compositions() {
		for _, s := range comp.Sections() {
			if s.Title == ReportabilityResponseSectionTitle {
				refs = append(refs, s.Entries...)
			}
		}
	}
	return refs
}

// splitReference splits a relative "Type/id" reference.
func splitReference(ref string) (string, string, bool) {
	parts := strings.Split(ref, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func firstCode(raw map[string]interface{}, element, system string) string {
	for _, c := range CodingsAt(raw, element) {
		if c.System == system && c.Code != "" {
			return c.Code
		}
	}
	return ""
}
