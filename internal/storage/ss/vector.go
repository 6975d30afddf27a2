package ss

import (
	"math"
	"os"

	"github.com/hlfshell/gitdb/internal/ids"
)

// No pack example ships a Go vector-index library (no faiss/hnsw/annoy
// binding appears anywhere in the retrieved corpus), so semantic search
// falls back to an IVF-without-PQ scheme built entirely on the
// modernc.org/sqlite connection already open for FTS5: on each query,
// centroids are picked by farthest-point sampling over the embedded
// rows, every row is assigned to its nearest centroid, and only rows in
// the two partitions whose centroids are nearest the query are scored.
// Below MinRowsForIndex rows the table is small enough that this just
// falls back to a full scan, skipping partitioning's overhead and risk
// of a degenerate single-member partition.
const defaultIVFPartitions = 8

// GITDB_DISABLE_VECTOR_INDEX, when set to any non-empty value, forces a
// full scan regardless of row count -- useful for isolating a ranking
// discrepancy from the partitioning heuristic during debugging.
const disableVectorIndexEnv = "GITDB_DISABLE_VECTOR_INDEX"

// VectorHit is one nearest-neighbor match, scored by cosine similarity.
type VectorHit struct {
	EntityType   ids.ItemType
	EntityID     int64
	RepositoryID ids.RepositoryID
	Score        float64

	// Data is the entity's canonical JSON, the hydration source for a
	// SearchResult's Body/State/Labels fields.
	Data string
}

// VectorSearchConfig bounds when the IVF partitioning kicks in.
type VectorSearchConfig struct {
	Dimension       int
	Partitions      int
	MinRowsForIndex int
}

// DefaultVectorSearchConfig matches SPEC_FULL.md's Search defaults.
func DefaultVectorSearchConfig() VectorSearchConfig {
	return VectorSearchConfig{Dimension: 384, Partitions: defaultIVFPartitions, MinRowsForIndex: 2000}
}

// VectorSearch finds the entities across issues, pull_requests,
// repositories, and users whose stored embedding is closest to query
// by cosine similarity, scoped to repoID when non-nil (users have no
// repository scope and are searched across all repositories
// regardless of repoID).
func (s *Store) VectorSearch(query []float32, cfg VectorSearchConfig, repoID *ids.RepositoryID, limit int) ([]VectorHit, error) {
	tables := []struct {
		name       string
		entityType ids.ItemType
	}{
		{"issues", ids.ItemTypeIssue},
		{"pull_requests", ids.ItemTypePullRequest},
		{"repositories", ids.ItemTypeRepository},
		{"users", ids.ItemTypeUser},
	}

	var all []VectorHit
	for _, tbl := range tables {
		hits, err := s.vectorSearchTable(tbl.name, tbl.entityType, query, cfg, repoID)
		if err != nil {
			return nil, err
		}
		all = append(all, hits...)
	}

	sortVectorHitsByScore(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) vectorSearchTable(table string, entityType ids.ItemType, query []float32, cfg VectorSearchConfig, repoID *ids.RepositoryID) ([]VectorHit, error) {
	rows, totalRows, err := s.loadEmbeddedRows(table, repoID)
	if err != nil {
		return nil, err
	}

	candidates := rows
	if os.Getenv(disableVectorIndexEnv) == "" && totalRows >= cfg.MinRowsForIndex {
		centroids := buildCentroids(rows, cfg.Partitions)
		candidates = restrictToNearestPartitions(rows, centroids, query)
	}

	var hits []VectorHit
	for _, r := range candidates {
		score := cosineSimilarity(query, r.embedding)
		hits = append(hits, VectorHit{EntityType: entityType, EntityID: r.id, RepositoryID: r.repoID, Score: score, Data: r.data})
	}
	return hits, nil
}

type embeddedRow struct {
	id        int64
	repoID    ids.RepositoryID
	embedding []float32
	data      string
}

func (s *Store) loadEmbeddedRows(table string, repoID *ids.RepositoryID) ([]embeddedRow, int, error) {
	idCol := "id"
	repoCol := "repository_id"
	scopeByRepo := true
	switch table {
	case "repositories":
		repoCol = "id"
	case "users":
		// Users carry no repository_id column; a repoID filter doesn't
		// scope them.
		repoCol = "0"
		scopeByRepo = false
	}

	query := "SELECT " + idCol + ", " + repoCol + ", embedding, data FROM " + table + " WHERE embedding IS NOT NULL"
	args := []interface{}{}
	if repoID != nil && scopeByRepo {
		query += " AND " + repoCol + " = ?"
		args = append(args, int64(*repoID))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, ids.Storage("loadEmbeddedRows", err)
	}
	defer rows.Close()

	var out []embeddedRow
	for rows.Next() {
		var id, repo int64
		var blob []byte
		var data string
		if err := rows.Scan(&id, &repo, &blob, &data); err != nil {
			return nil, 0, ids.Storage("loadEmbeddedRows", err)
		}
		out = append(out, embeddedRow{id: id, repoID: ids.RepositoryID(repo), embedding: unpackEmbedding(blob), data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, ids.Storage("loadEmbeddedRows", err)
	}
	return out, len(out), nil
}

// buildCentroids picks cfg.Partitions centroids from rows by farthest-
// point sampling: start from the first row, then repeatedly add the row
// farthest (by minimum distance) from every centroid chosen so far.
func buildCentroids(rows []embeddedRow, partitions int) [][]float32 {
	if len(rows) == 0 {
		return nil
	}
	if partitions > len(rows) {
		partitions = len(rows)
	}

	centroids := [][]float32{rows[0].embedding}
	for len(centroids) < partitions {
		var farthest []float32
		var farthestDist = -1.0
		for _, r := range rows {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				d := 1 - cosineSimilarity(r.embedding, c)
				if d < minDist {
					minDist = d
				}
			}
			if minDist > farthestDist {
				farthestDist = minDist
				farthest = r.embedding
			}
		}
		centroids = append(centroids, farthest)
	}
	return centroids
}

// restrictToNearestPartitions assigns every row to its nearest
// centroid, then returns the rows belonging to the two centroids
// closest to query -- a cheap approximation that trades a small recall
// loss for not scoring every row in the table.
func restrictToNearestPartitions(rows []embeddedRow, centroids [][]float32, query []float32) []embeddedRow {
	if len(centroids) <= 2 {
		return rows
	}

	centroidDist := make([]float64, len(centroids))
	for i, c := range centroids {
		centroidDist[i] = 1 - cosineSimilarity(query, c)
	}

	best, second := 0, 1
	if centroidDist[second] < centroidDist[best] {
		best, second = second, best
	}
	for i := 2; i < len(centroids); i++ {
		switch {
		case centroidDist[i] < centroidDist[best]:
			best, second = i, best
		case centroidDist[i] < centroidDist[second]:
			second = i
		}
	}

	assignment := make([]int, len(rows))
	for i, r := range rows {
		assignment[i] = nearestCentroid(r.embedding, centroids)
	}

	var out []embeddedRow
	for i, r := range rows {
		if assignment[i] == best || assignment[i] == second {
			out = append(out, r)
		}
	}
	return out
}

func nearestCentroid(v []float32, centroids [][]float32) int {
	bestIdx, bestSim := 0, -2.0
	for i, c := range centroids {
		sim := cosineSimilarity(v, c)
		if sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	return bestIdx
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortVectorHitsByScore(hits []VectorHit) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Score > hits[j-1].Score; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
