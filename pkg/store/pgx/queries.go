package pgx

const insertGraphSQL = `
INSERT INTO graphs (id, session_id, fingerprint, snapshot, stats, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const getGraphSQL = `
SELECT id, session_id, fingerprint, snapshot, stats, created_at
FROM graphs
WHERE id = $1`

const listGraphsSQL = `
SELECT id, session_id, fingerprint, stats, created_at
FROM graphs
WHERE $1 = '' OR session_id = $1
ORDER BY created_at DESC, id`

const deleteGraphSQL = `DELETE FROM graphs WHERE id = $1`

// The insert is driven by a select on graphs so a missing graph affects no
// rows instead of failing on the foreign key.
const upsertAnalysisSQL = `
INSERT INTO graph_analyses (graph_id, result, updated_at)
SELECT id, $2, $3 FROM graphs WHERE id = $1
ON CONFLICT (graph_id) DO UPDATE
SET result = EXCLUDED.result, updated_at = EXCLUDED.updated_at`

const getAnalysisSQL = `SELECT result FROM graph_analyses WHERE graph_id = $1`
