// Package task 后台定时任务
package task

import (
	"github.com/nexbyte/hackmd/internal/app"
)

func init() {
	RegisterWithApp(func(a *app.App) (Task, error) {
		cfg := a.Config()
		return NewRevisionPruneTask(a.RevisionService, a.Logger(),
			cfg.Task.RevisionKeepVersions, cfg.GetRevisionRetention(), cfg.GetRevisionPruneInterval()), nil
	})
	RegisterWithApp(func(a *app.App) (Task, error) {
		var l resetter
		if a.Limiter != nil {
			l = a.Limiter
		}
		return NewStateSweepTask(a.States, l, a.Logger(), a.Config().GetStateSweepInterval()), nil
	})
}
