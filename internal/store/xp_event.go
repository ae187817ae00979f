package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// xpRepo implements XPRepo backed by the xp_events table.
type xpRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *xpRepo) AppendXPEvent(ctx context.Context, data XPEventData) (*XPEventRecord, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO xp_events (sequence, user_name, activity, ref, points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		seqNum, data.User, data.Activity, data.Ref, data.Points, formatTime(ts),
	)
	if err != nil {
		return nil, fmt.Errorf("save XP event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("save XP event: %w", err)
	}
	if n == 0 {
		return nil, ErrDuplicate
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("save XP event: %w", err)
	}

	return &XPEventRecord{
		ID:        id,
		Sequence:  seqNum,
		User:      data.User,
		Activity:  data.Activity,
		Ref:       data.Ref,
		Points:    data.Points,
		Timestamp: ts.UTC(),
	}, nil
}

func (r *xpRepo) TotalXP(ctx context.Context, user string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM xp_events WHERE user_name = ?`, user,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum XP: %w", err)
	}
	return total, nil
}

func (r *xpRepo) TotalXPThrough(ctx context.Context, user string, seq int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM xp_events WHERE user_name = ? AND sequence <= ?`,
		user, seq,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum XP through %d: %w", seq, err)
	}
	return total, nil
}

func (r *xpRepo) Totals(ctx context.Context) ([]UserTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_name, SUM(points) FROM xp_events GROUP BY user_name ORDER BY user_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query XP totals: %w", err)
	}
	defer rows.Close()

	var out []UserTotal
	for rows.Next() {
		var ut UserTotal
		if err := rows.Scan(&ut.User, &ut.Points); err != nil {
			return nil, fmt.Errorf("scan XP total: %w", err)
		}
		out = append(out, ut)
	}
	return out, rows.Err()
}

func (r *xpRepo) QueryXPEvents(ctx context.Context, user string, opts QueryOpts) ([]XPEventRecord, error) {
	query, args := applyOpts(
		`SELECT id, sequence, user_name, activity, ref, points, created_at
		 FROM xp_events WHERE user_name = ?`,
		[]any{user}, "created_at", opts,
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query XP events: %w", err)
	}
	defer rows.Close()

	var out []XPEventRecord
	for rows.Next() {
		var (
			rec XPEventRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.User, &rec.Activity, &rec.Ref, &rec.Points, &ts); err != nil {
			return nil, fmt.Errorf("scan XP event: %w", err)
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
