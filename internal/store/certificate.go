package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// certificateRepo implements CertificateRepo backed by the certificates table.
type certificateRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *certificateRepo) SaveCertificate(ctx context.Context, cert *CertificateRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if cert.AwardedAt.IsZero() {
		cert.AwardedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO certificates (id, sequence, user_name, tier, icon, xp, awarded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_name, tier) DO NOTHING`,
		cert.ID, seqNum, cert.User, cert.Tier, cert.Icon, cert.XP, formatTime(cert.AwardedAt),
	)
	if err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}

	cert.Sequence = seqNum
	cert.AwardedAt = cert.AwardedAt.UTC()
	return nil
}

func (r *certificateRepo) Certificates(ctx context.Context, user string) ([]CertificateRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sequence, user_name, tier, icon, xp, awarded_at
		 FROM certificates WHERE user_name = ? ORDER BY sequence`, user,
	)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	var out []CertificateRecord
	for rows.Next() {
		var (
			c  CertificateRecord
			ts string
		)
		if err := rows.Scan(&c.ID, &c.Sequence, &c.User, &c.Tier, &c.Icon, &c.XP, &ts); err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		if c.AwardedAt, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
