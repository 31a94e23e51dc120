package reference

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

// ersdFixture is the content of a small eRSD store. Links map a condition or
// value set id to the ids it points at.
type ersdFixture struct {
	Conditions     []Condition
	ValueSets      []ValueSet
	Concepts       []Concept
	Crosswalk      []CrosswalkEntry
	ConditionLinks map[string][]string
	ValueSetLinks  map[string][]string
}

func insertERSD(t *testing.T, conn *sql.DB, f ersdFixture) {
	t.Helper()
	exec := func(query string, args ...interface{}) {
		_, err := conn.Exec(query, args...)
		require.NoError(t, err)
	}
	for _, c := range f.Conditions {
		exec(`INSERT INTO conditions (id, system, name) VALUES (?, ?, ?)`, c.ID, c.System, c.Name)
	}
	for _, vs := range f.ValueSets {
		exec(`INSERT INTO valuesets (id, oid, name, version, type) VALUES (?, ?, ?, ?, ?)`,
			vs.ID, nullable(vs.OID), vs.Name, nullable(vs.Version), vs.Type)
	}
	for _, cs := range f.Concepts {
		exec(`INSERT INTO concepts (id, code, code_system, display, gem_formatted_code) VALUES (?, ?, ?, ?, ?)`,
			cs.ID, cs.Code, cs.System, nullable(cs.Display), nullable(cs.GEMFormattedCode))
	}
	for _, cw := range f.Crosswalk {
		exec(`INSERT INTO icd_crosswalk (icd10_code, icd9_code) VALUES (?, ?)`, cw.ICD10Code, cw.ICD9Code)
	}
	for condition, valueSets := range f.ConditionLinks {
		for _, vs := range valueSets {
			exec(`INSERT INTO condition_to_valueset (condition_id, valueset_id) VALUES (?, ?)`, condition, vs)
		}
	}
	for vs, concepts := range f.ValueSetLinks {
		for _, cs := range concepts {
			exec(`INSERT INTO valueset_to_concept (valueset_id, concept_id) VALUES (?, ?)`, vs, cs)
		}
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
