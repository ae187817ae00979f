package xp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
)

// fakeXPRepo implements store.XPRepo in memory.
type fakeXPRepo struct {
	events  []store.XPEventRecord
	failing bool
}

func (f *fakeXPRepo) AppendXPEvent(_ context.Context, data store.XPEventData) (*store.XPEventRecord, error) {
	if f.failing {
		return nil, errors.New("disk full")
	}
	if data.Ref != "" {
		for _, e := range f.events {
			if e.User == data.User && e.Activity == data.Activity && e.Ref == data.Ref {
				return nil, store.ErrDuplicate
			}
		}
	}
	rec := store.XPEventRecord{
		ID:       int64(len(f.events) + 1),
		Sequence: int64(len(f.events) + 1),
		User:     data.User,
		Activity: data.Activity,
		Ref:      data.Ref,
		Points:   data.Points,
	}
	f.events = append(f.events, rec)
	return &rec, nil
}

func (f *fakeXPRepo) TotalXP(_ context.Context, user string) (int, error) {
	total := 0
	for _, e := range f.events {
		if e.User == user {
			total += e.Points
		}
	}
	return total, nil
}

func (f *fakeXPRepo) TotalXPThrough(_ context.Context, user string, seq int64) (int, error) {
	total := 0
	for _, e := range f.events {
		if e.User == user && e.Sequence <= seq {
			total += e.Points
		}
	}
	return total, nil
}

func (f *fakeXPRepo) Totals(_ context.Context) ([]store.UserTotal, error) {
	return nil, nil
}

func (f *fakeXPRepo) QueryXPEvents(_ context.Context, _ string, _ store.QueryOpts) ([]store.XPEventRecord, error) {
	return nil, nil
}

// fakeCertRepo implements store.CertificateRepo in memory.
type fakeCertRepo struct {
	certs   []store.CertificateRecord
	failFor string
}

func (f *fakeCertRepo) SaveCertificate(_ context.Context, cert *store.CertificateRecord) error {
	if cert.Tier == f.failFor {
		return errors.New("write failed")
	}
	for _, c := range f.certs {
		if c.User == cert.User && c.Tier == cert.Tier {
			return store.ErrDuplicate
		}
	}
	cert.Sequence = int64(len(f.certs) + 1)
	f.certs = append(f.certs, *cert)
	return nil
}

func (f *fakeCertRepo) Certificates(_ context.Context, user string) ([]store.CertificateRecord, error) {
	var out []store.CertificateRecord
	for _, c := range f.certs {
		if c.User == user {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestService(opts ...Option) (*Service, *fakeXPRepo, *fakeCertRepo) {
	xpRepo := &fakeXPRepo{}
	certRepo := &fakeCertRepo{}
	svc := NewService(progression.Default(), xpRepo, certRepo, opts...)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("cert-%d", n)
	}
	return svc, xpRepo, certRepo
}

func TestAward_Points(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Award(ctx, "ada", ActivityPuzzle, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Before)
	assert.Equal(t, 10, a.After)
	assert.Equal(t, "Bronze Swan", a.Progress.Current.Name)
	assert.False(t, a.LevelUp())

	a, err = svc.Award(ctx, "ada", ActivityTutorial, "t1")
	require.NoError(t, err)
	assert.Equal(t, 40, a.After)

	a, err = svc.Award(ctx, "ada", ActivityLesson, "l1")
	require.NoError(t, err)
	assert.Equal(t, 90, a.After)
	assert.Equal(t, 10, a.Progress.Remaining())
}

func TestAward_Rejects(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Award(ctx, "ada", Activity("quiz"), "q1")
	require.ErrorIs(t, err, ErrUnknownActivity)

	_, err = svc.Award(ctx, "ada", ActivityBonus, "")
	require.ErrorIs(t, err, ErrUnknownActivity)

	_, err = svc.Award(ctx, "  ", ActivityPuzzle, "p1")
	require.ErrorIs(t, err, ErrEmptyUser)

	assert.Empty(t, repo.events)
}

func TestAward_IdempotentPerRef(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Award(ctx, "ada", ActivityPuzzle, "p1")
	require.NoError(t, err)

	_, err = svc.Award(ctx, "ada", ActivityPuzzle, " p1 ")
	require.ErrorIs(t, err, ErrAlreadyAwarded)
	assert.Len(t, repo.events, 1)

	p, err := svc.Progress(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Points)
}

func TestAward_StoreError(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failing = true

	_, err := svc.Award(context.Background(), "ada", ActivityPuzzle, "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyAwarded)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAward_IssuesCertificatesOnce(t *testing.T) {
	svc, _, certs := newTestService()
	ctx := context.Background()

	_, err := svc.Grant(ctx, "ada", 90, "seed")
	require.NoError(t, err)

	a, err := svc.Award(ctx, "ada", ActivityPuzzle, "p1")
	require.NoError(t, err)
	assert.True(t, a.LevelUp())
	assert.Equal(t, "Silver 1", a.Progress.Current.Name)
	require.Len(t, a.Certificates, 1)
	assert.Equal(t, "Silver 1", a.Certificates[0].Tier)
	assert.Equal(t, "cert-1", a.Certificates[0].ID)
	assert.Equal(t, 100, a.Certificates[0].XP)

	// Silver 2 is crossed but is not a major tier.
	_, err = svc.Award(ctx, "ada", ActivityLesson, "l1")
	require.NoError(t, err)
	a, err = svc.Award(ctx, "ada", ActivityLesson, "l2")
	require.NoError(t, err)
	assert.Equal(t, "Silver 2", a.Progress.Current.Name)
	assert.Empty(t, a.Certificates)

	list, err := svc.Certificates(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Len(t, certs.certs, 1)
}

func TestAward_CrossesSeveralMajors(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.Grant(context.Background(), "ada", 750, "migration")
	require.NoError(t, err)

	var tiers []string
	for _, c := range a.Certificates {
		tiers = append(tiers, c.Tier)
	}
	assert.Equal(t, []string{"Silver 1", "Gold 1", "Platinum 1"}, tiers)
	assert.Len(t, a.Crossed, 7)
}

func TestAward_CertificateFailureKeepsXP(t *testing.T) {
	svc, repo, certs := newTestService()
	certs.failFor = "Silver 1"

	a, err := svc.Grant(context.Background(), "ada", 450, "import")
	require.NoError(t, err)
	assert.Equal(t, 450, a.After)
	require.Len(t, a.Certificates, 1)
	assert.Equal(t, "Gold 1", a.Certificates[0].Tier)
	assert.Len(t, repo.events, 1)
}

func TestAward_CatchesUpMissedCertificate(t *testing.T) {
	svc, repo, certs := newTestService()
	ctx := context.Background()

	// A Silver 1 certificate was lost when it was first reached.
	repo.events = append(repo.events, store.XPEventRecord{ID: 1, Sequence: 1, User: "ada", Activity: "bonus", Points: 120})

	a, err := svc.Award(ctx, "ada", ActivityPuzzle, "p1")
	require.NoError(t, err)
	assert.False(t, a.LevelUp())
	require.Len(t, a.Certificates, 1)
	assert.Equal(t, "Silver 1", a.Certificates[0].Tier)
	assert.Equal(t, 130, a.Certificates[0].XP)
	assert.Len(t, certs.certs, 1)
}

func TestGrant_InvalidPoints(t *testing.T) {
	svc, _, _ := newTestService()

	for _, pts := range []int{0, -10} {
		_, err := svc.Grant(context.Background(), "ada", pts, "oops")
		require.ErrorIs(t, err, ErrInvalidPoints)
	}
}

func TestGrant_LogsOnlyRecordedBonus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc, _, _ := newTestService(WithLogger(zap.New(core)))
	ctx := context.Background()

	_, err := svc.Grant(ctx, " ", 50, "welcome")
	require.ErrorIs(t, err, ErrEmptyUser)
	assert.Zero(t, logs.FilterMessage("granted bonus XP").Len())

	_, err = svc.Grant(ctx, "ada", 50, "welcome")
	require.NoError(t, err)
	entries := logs.FilterMessage("granted bonus XP").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ada", entries[0].ContextMap()["user"])
	assert.Equal(t, "welcome", entries[0].ContextMap()["reason"])
}

func TestProgress_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Progress(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, "Bronze Swan", p.Current.Name)
	require.NotNil(t, p.Next)
	assert.Equal(t, "Silver 1", p.Next.Name)

	_, err = svc.Progress(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyUser)
}

func TestNoCertificateRepo(t *testing.T) {
	svc := NewService(progression.Default(), &fakeXPRepo{}, nil)

	a, err := svc.Grant(context.Background(), "ada", 500, "seed")
	require.NoError(t, err)
	assert.Empty(t, a.Certificates)

	list, err := svc.Certificates(context.Background(), "ada")
	require.NoError(t, err)
	assert.Nil(t, list)
}

func TestParseActivity(t *testing.T) {
	tests := []struct {
		in      string
		want    Activity
		wantErr bool
	}{
		{"puzzle", ActivityPuzzle, false},
		{" Tutorial ", ActivityTutorial, false},
		{"LESSON", ActivityLesson, false},
		{"bonus", "", true},
		{"quiz", "", true},
	}

	for _, tt := range tests {
		got, err := ParseActivity(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownActivity, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
