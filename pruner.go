package resque

import (
	"context"
	"strconv"
	"strings"
)

// pruneDeadWorkers removes registrations whose backing OS process no longer
// exists, so crashed workers do not permanently occupy the registration set.
// Best-effort and host-local: it only sees processes on this host, so
// registrations from other hosts are left alone only if their pid happens
// to be live here. Runs once, at worker construction.
func (w *Worker) pruneDeadWorkers(ctx context.Context) {
	pids, err := w.procs.Pids(ctx)
	if err != nil {
		w.logger.Error("dead worker pruning skipped", "error", err)
		return
	}

	alive := make(map[int]bool, len(pids))
	for _, pid := range pids {
		alive[pid] = true
	}

	ids, err := w.conn.store.Members(ctx, w.conn.Key("workers"))
	if err != nil {
		w.logger.Error("dead worker pruning skipped", "error", err)
		return
	}

	own := w.env.Pid()
	for _, id := range ids {
		pid, ok := pidFromIdentity(id)
		if !ok {
			w.logger.Warn("skipping malformed worker identity", "identity", id)
			continue
		}
		// Never prune this process's own registrations.
		if pid == own {
			continue
		}
		if alive[pid] {
			continue
		}

		if err := w.conn.store.RemoveFromSet(ctx, w.conn.Key("workers"), id); err != nil {
			w.logger.Error("failed to prune dead worker", "identity", id, "error", err)
			continue
		}
		w.logger.Info("pruned dead worker", "identity", id)
	}
}

// pidFromIdentity extracts the pid from a name:pid:queues identity string.
func pidFromIdentity(id string) (int, bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) < 3 {
		return 0, false
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return pid, true
}
