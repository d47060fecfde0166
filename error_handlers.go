package priopool

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError reports a non-task failure, such as a worker that
// could not be pinned to its CPU. The error is always logged; the
// OnInternalError hook is called when set.
func (p *Pool) reportInternalError(e error) {
	lg.FromContext(p.opts.Ctx).Error("internal pool error", lg.Any("error", e))
	if p.opts.OnInternalError != nil {
		p.opts.OnInternalError(e)
	}
}

// reportTaskError hands a task failure to the OnTaskError hook. Task errors
// never stop the pool; the same error is also stored in the task's future.
func (p *Pool) reportTaskError(err error) {
	if p.opts.OnTaskError != nil {
		p.opts.OnTaskError(err)
	}
}
