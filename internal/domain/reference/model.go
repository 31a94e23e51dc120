package reference

import (
	"sort"
	"strings"
)

// Condition is a reportable condition identified by its SNOMED CT code.
type Condition struct {
	ID          string `db:"id" json:"id"`
	System      string `db:"system" json:"system"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
}

// ValueSet is a named category of clinical evidence for a condition, e.g.
// "dxtc" (diagnosis trigger codes) or "sdtc" (suspected disease trigger codes).
type ValueSet struct {
	ID      string `db:"id" json:"id"`
	OID     string `db:"oid" json:"oid,omitempty"`
	Name    string `db:"name" json:"name"`
	Version string `db:"version" json:"version,omitempty"`
	Type    string `db:"type" json:"type"`
}

// Concept is a single clinical code within a code system.
type Concept struct {
	ID               string `db:"id" json:"id"`
	Code             string `db:"code" json:"code"`
	System           string `db:"code_system" json:"system"`
	Display          string `db:"display" json:"display,omitempty"`
	GEMFormattedCode string `db:"gem_formatted_code" json:"gem_formatted_code,omitempty"`
}

// CrosswalkEntry maps an ICD-10 code (GEM formatted, no dot) to an ICD-9 code.
type CrosswalkEntry struct {
	ICD10Code string `db:"icd10_code" json:"icd10_code"`
	ICD9Code  string `db:"icd9_code" json:"icd9_code"`
}

// GroupedConcepts is one row of the condition join, grouped by value set type
// and code system. Codes and Crosswalk are pipe-delimited.
type GroupedConcepts struct {
	ValueSetType string
	Codes        string
	System       string
	Crosswalk    string
}

// ConceptRow is a resolved (value set type, codes, system) triple with the
// codes still pipe-delimited.
type ConceptRow struct {
	ValueSetType string `json:"valueset_type"`
	Codes        string `json:"codes"`
	System       string `json:"system"`
}

// ConceptGroup is a list of codes that share a code system.
type ConceptGroup struct {
	Codes  []string `json:"codes"`
	System string   `json:"system"`
}

// ReportableCodeSet maps value set type to its code groups.
type ReportableCodeSet map[string][]ConceptGroup

// Codes flattens every code of every group into a set.
func (s ReportableCodeSet) Codes() map[string]struct{} {
	out := make(map[string]struct{})
	for _, groups := range s {
		for _, g := range groups {
			for _, c := range g.Codes {
				out[c] = struct{}{}
			}
		}
	}
	return out
}

// Types returns the value set types present, sorted.
func (s ReportableCodeSet) Types() []string {
	types := make([]string, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

const codeSeparator = "|"

func splitCodes(codes string) []string {
	return strings.Split(codes, codeSeparator)
}

// Code system URIs.
const (
	SystemSNOMED = "http://snomed.info/sct"
	SystemICD10  = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemICD9   = "http://hl7.org/fhir/sid/icd-9-cm"
	SystemLOINC  = "http://loinc.org"
)
