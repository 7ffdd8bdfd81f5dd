package storage

import (
	"database/sql"
	"fmt"
)

// RecordStageExecution inserts the final record for one attempted
// stage. Skipped stages are recorded with a NULL exit code.
func (s *Storage) RecordStageExecution(runID int, se StageExecution) error {
	var exitCode sql.NullInt64
	if se.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*se.ExitCode), Valid: true}
	}

	_, err := s.db.Exec(
		"INSERT INTO stage_executions (run_id, name, status, exit_code, reason, output, started_at, duration) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		runID, se.Name, se.Status, exitCode, se.Reason, se.Output, se.StartedAt, se.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to record stage execution: %w", err)
	}
	return nil
}

// GetStageExecutions retrieves all stage executions for a run, in
// execution order.
func (s *Storage) GetStageExecutions(runID int) ([]*StageExecution, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, name, status, exit_code, reason, output, started_at, duration FROM stage_executions WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage executions: %w", err)
	}
	defer rows.Close()

	var stages []*StageExecution
	for rows.Next() {
		var se StageExecution
		var exitCode sql.NullInt64
		var output sql.NullString

		err := rows.Scan(&se.ID, &se.RunID, &se.Name, &se.Status, &exitCode, &se.Reason, &output, &se.StartedAt, &se.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage execution: %w", err)
		}

		if exitCode.Valid {
			code := int(exitCode.Int64)
			se.ExitCode = &code
		}
		if output.Valid {
			se.Output = output.String
		}

		stages = append(stages, &se)
	}

	return stages, rows.Err()
}
