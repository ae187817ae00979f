package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/softswan/softswan/internal/app"
	"github.com/softswan/softswan/internal/store"
	"github.com/softswan/softswan/internal/watch"
	"github.com/softswan/softswan/internal/xp"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open a live dashboard that follows a learner's XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := strings.TrimSpace(userFlag(cmd))
		if user == "" {
			return xp.ErrEmptyUser
		}

		broker := xp.NewBroker(logger)
		d, err := openDeps(cmd, xp.WithBroker(broker))
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		load := progressLoader(d.xp, user)
		initial := load(ctx)
		if initial.Err != nil {
			return initial.Err
		}

		w, err := watch.New(d.dbPath, watch.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("watch database: %w", err)
		}
		defer w.Stop()
		last := initial.Progress.Points
		w.OnChange(func() {
			p, err := d.xp.Progress(ctx, user)
			if err != nil {
				logger.Warn("reload progress", zap.Error(err))
				return
			}
			if p.Points == last {
				return
			}
			broker.Publish(xp.Change{
				User:     user,
				Before:   last,
				After:    p.Points,
				Progress: p,
				Crossed:  d.table.Crossed(last, p.Points),
			})
			last = p.Points
		})

		changes, unsubscribe := broker.Subscribe(16)
		defer unsubscribe()

		g, gctx := errgroup.WithContext(ctx)
		prog := app.NewProgram(gctx, app.NewDashboard(gctx, user, load))

		if err := w.Start(gctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}

		g.Go(func() error {
			defer broker.Close()
			defer w.Stop()
			defer cancel()
			_, err := prog.Run()
			return err
		})
		g.Go(func() error {
			for c := range changes {
				if c.User != user {
					continue
				}
				msg := load(gctx)
				if msg.Err == nil {
					msg.Progress = c.Progress
				}
				prog.Send(msg)
			}
			return nil
		})

		return g.Wait()
	},
}

// progressLoader reads a learner's progress and latest certificate.
func progressLoader(svc *xp.Service, user string) app.Loader {
	return func(ctx context.Context) app.ProgressMsg {
		p, err := svc.Progress(ctx, user)
		if err != nil {
			return app.ProgressMsg{Err: err}
		}
		certs, err := svc.Certificates(ctx, user)
		if err != nil {
			return app.ProgressMsg{Progress: p, Err: err}
		}
		return app.ProgressMsg{Progress: p, Latest: latestCertificate(certs)}
	}
}

func latestCertificate(certs []store.CertificateRecord) *store.CertificateRecord {
	if len(certs) == 0 {
		return nil
	}
	c := certs[len(certs)-1]
	return &c
}

func init() {
	addUserFlag(watchCmd)
}
