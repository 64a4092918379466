package run

import "context"

// dispatchHooks drains the hook queue one job at a time. Jobs run
// serially so a slow hook delays later dictations' hooks instead of
// piling up processes.
func (s *Server) dispatchHooks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.hookCh:
			if err := s.hook.Run(ctx, job); err != nil {
				s.logger.Errorf("hook for session %d: %v", job.SessionID, err)
				continue
			}
			s.metrics.incHooksSent()
			s.logger.Debugf("hook delivered for session %d", job.SessionID)
		}
	}
}
