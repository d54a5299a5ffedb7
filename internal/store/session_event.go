package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendSessionStarted(ctx context.Context, data SessionStartedData) error {
	return r.insert(ctx, "session event",
		`INSERT INTO session_events (sequence, timestamp, session_id, subject, level)
		 VALUES (?, ?, ?, ?, ?)`,
		data.SessionID, data.Subject, data.Level)
}

func (r *eventRepo) AppendBatchGenerated(ctx context.Context, data BatchGeneratedData) error {
	return r.insert(ctx, "batch event",
		`INSERT INTO batch_events (sequence, timestamp, session_id, level, item_count, fallback)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.Level, data.ItemCount, data.Fallback)
}

func (r *eventRepo) AppendAnswerGraded(ctx context.Context, data AnswerGradedData) error {
	return r.insert(ctx, "answer event",
		`INSERT INTO answer_events (sequence, timestamp, session_id, question_id, level,
			question, correct_answer, student_answer, score, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.QuestionID, data.Level, data.Question,
		data.CorrectAnswer, data.StudentAnswer, data.Score, data.Reason)
}

func (r *eventRepo) AppendLevelDecision(ctx context.Context, data LevelDecisionData) error {
	return r.insert(ctx, "level event",
		`INSERT INTO level_events (sequence, timestamp, session_id, from_level, to_level, average, decision)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.FromLevel, data.ToLevel, data.Average, data.Decision)
}

// insert stamps the row with the next sequence and the current time, which
// must be the first two placeholders of query.
func (r *eventRepo) insert(ctx context.Context, kind, query string, args ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	full := append([]any{seqNum, time.Now().UnixMilli()}, args...)
	if _, err := r.db.ExecContext(ctx, query, full...); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (r *eventRepo) LevelHistory(ctx context.Context, sessionID string) ([]LevelDecision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sequence, timestamp, session_id, from_level, to_level, average, decision
		 FROM level_events WHERE session_id = ? ORDER BY sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query level history: %w", err)
	}
	defer rows.Close()

	var out []LevelDecision
	for rows.Next() {
		var (
			d  LevelDecision
			ts int64
		)
		if err := rows.Scan(&d.Sequence, &ts, &d.SessionID, &d.FromLevel, &d.ToLevel, &d.Average, &d.Decision); err != nil {
			return nil, fmt.Errorf("scan level decision: %w", err)
		}
		d.Timestamp = time.UnixMilli(ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *eventRepo) SubjectStats(ctx context.Context) ([]SubjectStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.subject, COUNT(DISTINCT s.session_id), COUNT(a.id), COALESCE(AVG(a.score), 0)
		 FROM session_events s
		 LEFT JOIN answer_events a ON a.session_id = s.session_id
		 GROUP BY s.subject ORDER BY s.subject`)
	if err != nil {
		return nil, fmt.Errorf("query subject stats: %w", err)
	}

	var out []SubjectStats
	index := make(map[string]int)
	for rows.Next() {
		var st SubjectStats
		if err := rows.Scan(&st.Subject, &st.Sessions, &st.Answers, &st.AvgScore); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subject stats: %w", err)
		}
		index[st.Subject] = len(out)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	moves, err := r.db.QueryContext(ctx,
		`SELECT s.subject,
			COALESCE(SUM(CASE WHEN l.decision = 'promote' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN l.decision = 'demote' THEN 1 ELSE 0 END), 0)
		 FROM level_events l
		 JOIN (SELECT DISTINCT session_id, subject FROM session_events) s ON s.session_id = l.session_id
		 GROUP BY s.subject`)
	if err != nil {
		return nil, fmt.Errorf("query level moves: %w", err)
	}
	defer moves.Close()

	for moves.Next() {
		var (
			subject         string
			promote, demote int
		)
		if err := moves.Scan(&subject, &promote, &demote); err != nil {
			return nil, fmt.Errorf("scan level moves: %w", err)
		}
		if i, ok := index[subject]; ok {
			out[i].Promotions = promote
			out[i].Demotions = demote
		}
	}
	return out, moves.Err()
}
