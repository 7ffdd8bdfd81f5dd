package storage

import (
	"database/sql"
	"fmt"
)

// StageStats aggregates the recorded history of one stage name.
type StageStats struct {
	Name        string  `json:"name"`
	Executions  int     `json:"executions"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	LastStatus  string  `json:"last_status"`
	LastStarted string  `json:"last_started"`
	LastDuration *string `json:"last_duration,omitempty"`
}

// GetStageStats returns per-stage aggregates over all recorded runs.
func (s *Storage) GetStageStats() ([]StageStats, error) {
	// Plain aggregates rather than window functions for SQLite
	// compatibility; the latest row is resolved with a MAX(id) join.
	query := `
		SELECT
			se.name,
			COUNT(*) as executions,
			SUM(CASE WHEN se.status = 'passed' THEN 1 ELSE 0 END) as passed,
			SUM(CASE WHEN se.status = 'failed' THEN 1 ELSE 0 END) as failed,
			SUM(CASE WHEN se.status = 'skipped' THEN 1 ELSE 0 END) as skipped,
			last.status,
			last.started_at,
			last.duration
		FROM stage_executions se
		JOIN stage_executions last ON last.id = (
			SELECT MAX(id) FROM stage_executions WHERE name = se.name
		)
		GROUP BY se.name
		ORDER BY se.name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage stats: %w", err)
	}
	defer rows.Close()

	stats := make([]StageStats, 0)
	for rows.Next() {
		var st StageStats
		var lastDuration sql.NullString

		err := rows.Scan(&st.Name, &st.Executions, &st.Passed, &st.Failed, &st.Skipped, &st.LastStatus, &st.LastStarted, &lastDuration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage stats: %w", err)
		}

		if lastDuration.Valid {
			durationStr := lastDuration.String
			st.LastDuration = &durationStr
		}

		stats = append(stats, st)
	}

	return stats, rows.Err()
}
