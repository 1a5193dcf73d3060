// Package cloudsync keeps the local store in step with the remote API:
// pushes mirror local mutations, pulls replace the local collections.
package cloudsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Lillogorillo/Beam-App/internal/remote"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

// TokenSource reports the current bearer credential, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Replacer is the one write path a pull uses on the local store.
type Replacer interface {
	Replace(snap store.Snapshot)
}

type Gateway struct {
	client *remote.Client
	local  Replacer
	creds  TokenSource
	logger *slog.Logger
}

func NewGateway(client *remote.Client, local Replacer, creds TokenSource, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{client: client, local: local, creds: creds, logger: logger}
}

// LoadFromRemote fetches tasks, categories and time sessions in parallel
// and replaces the local collections with them. Without a credential it
// does nothing. On any failure the local store is left untouched.
//
// Concurrent calls are not coalesced; the last one to finish wins.
func (g *Gateway) LoadFromRemote(ctx context.Context) error {
	token, ok := g.creds.Token()
	if !ok {
		g.logger.Debug("pull skipped: no credential")
		return nil
	}

	var snap store.Snapshot
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		tasks, err := g.client.ListTasks(ctx, token)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		snap.Tasks = tasks
		return nil
	})
	eg.Go(func() error {
		cats, err := g.client.ListCategories(ctx, token)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		snap.Categories = cats
		return nil
	})
	eg.Go(func() error {
		sessions, err := g.client.ListTimeSessions(ctx, token)
		if err != nil {
			return fmt.Errorf("list time sessions: %w", err)
		}
		snap.TimeSessions = sessions
		return nil
	})
	if err := eg.Wait(); err != nil {
		g.logger.Warn("pull failed", "error", err)
		return err
	}

	// The credential may have been dropped or swapped while the lists were
	// in flight; such a result belongs to another session.
	if current, ok := g.creds.Token(); !ok || current != token {
		g.logger.Info("pull discarded: credential changed")
		return nil
	}

	g.local.Replace(snap)
	g.logger.Info("pull applied",
		"tasks", len(snap.Tasks),
		"categories", len(snap.Categories),
		"time_sessions", len(snap.TimeSessions))
	return nil
}

// Push mirrors one mutation with a single API call. Task mutations are
// followed by a full pull.
func (g *Gateway) Push(ctx context.Context, m store.Mutation) store.PushResult {
	res := store.PushResult{Mutation: m}
	token, ok := g.creds.Token()
	if !ok {
		res.Skipped = true
		return res
	}

	if err := g.send(ctx, token, m); err != nil {
		res.Err = fmt.Errorf("%s %s: %w", m.Kind, m.ID, err)
		return res
	}
	res.Refreshed = g.refreshAfterPush(ctx, m)
	return res
}

func (g *Gateway) send(ctx context.Context, token string, m store.Mutation) error {
	switch m.Kind {
	case store.TaskCreated:
		return g.client.CreateTask(ctx, token, m.Task)
	case store.TaskUpdated:
		return g.client.UpdateTask(ctx, token, m.ID, m.Patch)
	case store.TaskDeleted:
		return g.client.DeleteTask(ctx, token, m.ID)
	case store.CategoryCreated:
		return g.client.CreateCategory(ctx, token, m.Category)
	case store.CategoryUpdated:
		return g.client.UpdateCategory(ctx, token, m.ID, m.CategoryPatch)
	case store.CategoryDeleted:
		return g.client.DeleteCategory(ctx, token, m.ID)
	case store.SessionCreated:
		return g.client.CreateTimeSession(ctx, token, m.Session)
	case store.SubtaskCreated:
		return g.client.CreateSubtask(ctx, token, m.TaskID, m.Subtask)
	case store.SubtaskUpdated:
		return g.client.UpdateSubtask(ctx, token, m.TaskID, m.Subtask)
	case store.SubtaskDeleted:
		return g.client.DeleteSubtask(ctx, token, m.ID)
	default:
		return fmt.Errorf("unknown mutation kind %d", m.Kind)
	}
}

// refreshAfterPush pulls everything again after a successful task push so
// changes made on other devices show up. It reports whether the pull
// completed.
func (g *Gateway) refreshAfterPush(ctx context.Context, m store.Mutation) bool {
	switch m.Kind {
	case store.TaskCreated, store.TaskUpdated, store.TaskDeleted:
	default:
		return false
	}
	if err := g.LoadFromRemote(ctx); err != nil {
		return false
	}
	return true
}
