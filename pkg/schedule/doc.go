// Package schedule runs cleaning passes over a set of roots on a cron
// schedule.
//
// Each pass takes the root's lock (package lock) so a scheduled pass never
// overlaps a manual runctl invocation on the same root. Roots are cleaned one
// after another. A failing root is logged and does not stop the others.
//
// After every scheduled pass the journal is pruned of records older than the
// configured maximum age.
//
//	s := schedule.NewScheduler(schedule.Config{Cron: "0 3 * * *"}, factory)
//	s.SetTargets(targets)
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop()
package schedule
