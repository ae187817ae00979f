package xp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
)

var (
	// ErrUnknownActivity is returned for activity kinds that carry no points.
	ErrUnknownActivity = errors.New("unknown activity")

	// ErrAlreadyAwarded is returned when a user repeats a completed item.
	ErrAlreadyAwarded = errors.New("already awarded")

	// ErrInvalidPoints is returned by Grant for non-positive amounts.
	ErrInvalidPoints = errors.New("points must be positive")

	// ErrEmptyUser is returned when no user name is given.
	ErrEmptyUser = errors.New("user name is empty")
)

// Award is the outcome of a recorded XP event.
type Award struct {
	Event        *store.XPEventRecord
	Before       int
	After        int
	Progress     progression.Progress
	Crossed      []progression.Tier
	Certificates []store.CertificateRecord
}

// LevelUp reports whether the award moved the user into a new tier.
func (a *Award) LevelUp() bool {
	return len(a.Crossed) > 0
}

// Service owns learners' XP totals and re-evaluates them on every change.
type Service struct {
	table  *progression.Table
	xp     store.XPRepo
	certs  store.CertificateRepo
	broker *Broker
	logger *zap.Logger
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithBroker publishes every change on b.
func WithBroker(b *Broker) Option {
	return func(s *Service) { s.broker = b }
}

// NewService creates an XP service. certs may be nil to disable certificates.
func NewService(table *progression.Table, xp store.XPRepo, certs store.CertificateRepo, opts ...Option) *Service {
	s := &Service{
		table:  table,
		xp:     xp,
		certs:  certs,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the tier table the service evaluates against.
func (s *Service) Table() *progression.Table {
	return s.table
}

// Award records the points for completing ref in the given activity.
func (s *Service) Award(ctx context.Context, user string, activity Activity, ref string) (*Award, error) {
	if activity.Points() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	return s.record(ctx, user, activity, strings.TrimSpace(ref), activity.Points())
}

// Grant adds a manual bonus. Bonuses are never deduplicated.
func (s *Service) Grant(ctx context.Context, user string, points int, reason string) (*Award, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoints, points)
	}
	a, err := s.record(ctx, user, ActivityBonus, "", points)
	if err != nil {
		return nil, err
	}
	s.logger.Info("granted bonus XP",
		zap.String("user", a.Event.User),
		zap.Int("points", points),
		zap.String("reason", reason),
	)
	return a, nil
}

// Progress returns the user's total and its evaluation.
func (s *Service) Progress(ctx context.Context, user string) (progression.Progress, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return progression.Progress{}, ErrEmptyUser
	}
	total, err := s.xp.TotalXP(ctx, user)
	if err != nil {
		return progression.Progress{}, fmt.Errorf("load XP for %s: %w", user, err)
	}
	return s.table.Evaluate(total), nil
}

func (s *Service) record(ctx context.Context, user string, activity Activity, ref string, points int) (*Award, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, ErrEmptyUser
	}

	ev, err := s.xp.AppendXPEvent(ctx, store.XPEventData{
		User:     user,
		Activity: string(activity),
		Ref:      ref,
		Points:   points,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %s %q for %s", ErrAlreadyAwarded, activity, ref, user)
	}
	if err != nil {
		return nil, fmt.Errorf("record XP: %w", err)
	}

	// Bound the window by the event's own sequence; later writes by other
	// processes must not shift it.
	after, err := s.xp.TotalXPThrough(ctx, user, ev.Sequence)
	if err != nil {
		return nil, fmt.Errorf("load XP for %s: %w", user, err)
	}
	before := after - points

	award := &Award{
		Event:    ev,
		Before:   before,
		After:    after,
		Progress: s.table.Evaluate(after),
		Crossed:  s.table.Crossed(before, after),
	}
	award.Certificates = s.issueCertificates(ctx, user, after)

	s.logger.Debug("recorded XP",
		zap.String("user", user),
		zap.String("activity", string(activity)),
		zap.String("ref", ref),
		zap.Int("before", before),
		zap.Int("after", after),
		zap.String("tier", award.Progress.Current.Name),
	)
	if award.LevelUp() {
		s.logger.Info("tier reached",
			zap.String("user", user),
			zap.String("tier", award.Progress.Current.Name),
		)
	}

	if s.broker != nil {
		s.broker.Publish(Change{
			User:         user,
			Before:       before,
			After:        after,
			Progress:     award.Progress,
			Crossed:      award.Crossed,
			Certificates: award.Certificates,
		})
	}
	return award, nil
}

// issueCertificates saves a certificate for every major tier at or below
// total that the user does not hold yet, so a tier missed by an earlier
// award is caught up on the next one. Failures are logged; the XP event is
// already recorded.
func (s *Service) issueCertificates(ctx context.Context, user string, total int) []store.CertificateRecord {
	if s.certs == nil {
		return nil
	}

	held := make(map[string]bool)
	existing, err := s.certs.Certificates(ctx, user)
	if err != nil {
		s.logger.Warn("load certificates failed", zap.String("user", user), zap.Error(err))
	}
	for _, c := range existing {
		held[c.Tier] = true
	}

	var issued []store.CertificateRecord
	for _, tier := range s.table.Majors() {
		if tier.XP > total {
			break
		}
		if held[tier.Name] {
			continue
		}
		cert := store.CertificateRecord{
			ID:        s.newID(),
			User:      user,
			Tier:      tier.Name,
			Icon:      tier.Icon,
			XP:        total,
			AwardedAt: time.Now(),
		}
		err := s.certs.SaveCertificate(ctx, &cert)
		if errors.Is(err, store.ErrDuplicate) {
			continue
		}
		if err != nil {
			s.logger.Warn("save certificate failed",
				zap.String("user", user),
				zap.String("tier", tier.Name),
				zap.Error(err),
			)
			continue
		}
		issued = append(issued, cert)
	}
	return issued
}

// Certificates returns the user's certificates in award order.
func (s *Service) Certificates(ctx context.Context, user string) ([]store.CertificateRecord, error) {
	if s.certs == nil {
		return nil, nil
	}
	certs, err := s.certs.Certificates(ctx, strings.TrimSpace(user))
	if err != nil {
		return nil, fmt.Errorf("load certificates: %w", err)
	}
	return certs, nil
}
