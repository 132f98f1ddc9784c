package cron

import "context"

// Refresher reloads the active scope in place.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type refreshJob struct {
	store Refresher
}

// NewRefreshJob polls the remote for changes made outside this process.
func NewRefreshJob(store Refresher) Job {
	return refreshJob{store: store}
}

func (refreshJob) Name() string { return "discount-refresh" }

func (j refreshJob) Run(ctx context.Context) error {
	return j.store.Refresh(ctx)
}
