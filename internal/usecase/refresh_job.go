package usecase

import (
	"context"

	applogger "BotBourse/pkg/logger"
	"BotBourse/pkg/queue"
)

// SnapshotRefreshType is the queue message type the upstream model
// pipeline publishes when a run finishes.
const SnapshotRefreshType = "snapshot.refresh"

// SnapshotRefreshPayload carries the run identity for logging only; the
// refresh always loads whatever is latest in storage.
type SnapshotRefreshPayload struct {
	RunID string `json:"runId"`
}

// SnapshotRefreshJob re-materializes the instrument snapshot when the
// upstream pipeline completes.
type SnapshotRefreshJob struct {
	snap *SnapshotService
	l    *applogger.Logger
}

func NewSnapshotRefreshJob(snap *SnapshotService, l *applogger.Logger) *SnapshotRefreshJob {
	return &SnapshotRefreshJob{snap: snap, l: l}
}

func (j *SnapshotRefreshJob) Name() string { return "snapshot-refresh" }

func (j *SnapshotRefreshJob) Type() string { return SnapshotRefreshType }

func (j *SnapshotRefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[SnapshotRefreshPayload](payload)
	if err != nil {
		return err
	}
	if j.l != nil {
		j.l.Info("snapshot refresh requested", applogger.String("run_id", p.RunID))
	}
	return j.snap.Refresh(ctx)
}

var _ queue.Job = (*SnapshotRefreshJob)(nil)
