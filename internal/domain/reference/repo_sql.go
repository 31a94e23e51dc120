package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// resolveConditionSQLite joins a condition to its value sets and concepts,
// grouped by value set type and code system. ICD-9 codes are pulled in from
// the GEM crosswalk for every ICD-10 concept in the group.
const resolveConditionSQLite = `
SELECT
    vs.type AS valueset_type,
    GROUP_CONCAT(cs.code, '|') AS codes,
    cs.code_system AS system,
    COALESCE(GROUP_CONCAT(cw.icd9_conversions, '|'), '') AS crosswalk_conversions
FROM conditions c
JOIN condition_to_valueset cv ON c.id = cv.condition_id
JOIN valuesets vs ON cv.valueset_id = vs.id
JOIN valueset_to_concept vc ON vs.id = vc.valueset_id
JOIN concepts cs ON vc.concept_id = cs.id
LEFT JOIN (
    SELECT icd10_code, GROUP_CONCAT(icd9_code, '|') AS icd9_conversions
    FROM icd_crosswalk
    GROUP BY icd10_code
) cw ON cs.gem_formatted_code = cw.icd10_code
WHERE c.id = ?
GROUP BY vs.type, cs.code_system
ORDER BY vs.type, cs.code_system`

// =========== eRSD Repository (database/sql) ===========

type conceptRepoSQL struct{ db *sql.DB }

// NewConceptRepoSQL returns a ConceptRepository over an eRSD SQLite database.
func NewConceptRepoSQL(db *sql.DB) ConceptRepository { return &conceptRepoSQL{db: db} }

func (r *conceptRepoSQL) ResolveByCondition(ctx context.Context, conditionID string) ([]*GroupedConcepts, error) {
	rows, err := r.db.QueryContext(ctx, resolveConditionSQLite, conditionID)
	if err != nil {
		return nil, fmt.Errorf("resolve concepts: %w", err)
	}
	defer rows.Close()
	var results []*GroupedConcepts
	for rows.Next() {
		var g GroupedConcepts
		var vsType, codes, system sql.NullString
		if err := rows.Scan(&vsType, &codes, &system, &g.Crosswalk); err != nil {
			return nil, fmt.Errorf("scan concepts: %w", err)
		}
		if !codes.Valid || codes.String == "" {
			continue
		}
		g.ValueSetType, g.Codes, g.System = vsType.String, codes.String, system.String
		results = append(results, &g)
	}
	return results, rows.Err()
}

func (r *conceptRepoSQL) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

// =========== RCKMS Repository (database/sql) ===========

type conditionRepoSQL struct{ db *sql.DB }

// NewConditionRepoSQL returns a repository over an RCKMS SQLite database. It
// serves name lookups and, for the seed command, condition upserts.
func NewConditionRepoSQL(db *sql.DB) ConditionStore { return &conditionRepoSQL{db: db} }

func (r *conditionRepoSQL) NameByCondition(ctx context.Context, conditionID string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM conditions WHERE id = ?`, conditionID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("condition name: %w", err)
	}
	return name, nil
}

func (r *conditionRepoSQL) UpsertCondition(ctx context.Context, c *Condition) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conditions (id, system, name, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET system = excluded.system, name = excluded.name, description = excluded.description`,
		c.ID, c.System, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("upsert condition %s: %w", c.ID, err)
	}
	return nil
}

func (r *conditionRepoSQL) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
