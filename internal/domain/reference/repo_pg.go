package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resolveConditionPG = `
SELECT
    vs.type,
    string_agg(cs.code, '|'),
    cs.code_system,
    COALESCE(string_agg(cw.icd9_conversions, '|'), '')
FROM conditions c
JOIN condition_to_valueset cv ON c.id = cv.condition_id
JOIN valuesets vs ON cv.valueset_id = vs.id
JOIN valueset_to_concept vc ON vs.id = vc.valueset_id
JOIN concepts cs ON vc.concept_id = cs.id
LEFT JOIN (
    SELECT icd10_code, string_agg(icd9_code, '|') AS icd9_conversions
    FROM icd_crosswalk
    GROUP BY icd10_code
) cw ON cs.gem_formatted_code = cw.icd10_code
WHERE c.id = $1
GROUP BY vs.type, cs.code_system
ORDER BY vs.type, cs.code_system`

// =========== eRSD Repository (PostgreSQL) ===========

type conceptRepoPG struct{ pool *pgxpool.Pool }

// NewConceptRepoPG returns a ConceptRepository over an eRSD PostgreSQL database.
func NewConceptRepoPG(pool *pgxpool.Pool) ConceptRepository { return &conceptRepoPG{pool: pool} }

func (r *conceptRepoPG) ResolveByCondition(ctx context.Context, conditionID string) ([]*GroupedConcepts, error) {
	rows, err := r.pool.Query(ctx, resolveConditionPG, conditionID)
	if err != nil {
		return nil, fmt.Errorf("resolve concepts: %w", err)
	}
	defer rows.Close()
	var results []*GroupedConcepts
	for rows.Next() {
		var g GroupedConcepts
		var vsType, codes, system *string
		if err := rows.Scan(&vsType, &codes, &system, &g.Crosswalk); err != nil {
			return nil, fmt.Errorf("scan concepts: %w", err)
		}
		if codes == nil || *codes == "" {
			continue
		}
		g.Codes = *codes
		if vsType != nil {
			g.ValueSetType = *vsType
		}
		if system != nil {
			g.System = *system
		}
		results = append(results, &g)
	}
	return results, rows.Err()
}

func (r *conceptRepoPG) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

// =========== RCKMS Repository (PostgreSQL) ===========

type conditionRepoPG struct{ pool *pgxpool.Pool }

// NewConditionRepoPG returns an RCKMS repository over PostgreSQL.
func NewConditionRepoPG(pool *pgxpool.Pool) ConditionStore { return &conditionRepoPG{pool: pool} }

func (r *conditionRepoPG) NameByCondition(ctx context.Context, conditionID string) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM conditions WHERE id = $1`, conditionID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("condition name: %w", err)
	}
	return name, nil
}

func (r *conditionRepoPG) UpsertCondition(ctx context.Context, c *Condition) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conditions (id, system, name, description) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET system = EXCLUDED.system, name = EXCLUDED.name, description = EXCLUDED.description`,
		c.ID, c.System, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("upsert condition %s: %w", c.ID, err)
	}
	return nil
}

func (r *conditionRepoPG) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }
