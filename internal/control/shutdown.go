package control

import "log/slog"

// EmergencyShutdown persists settings best-effort, tears subsystems down in
// reverse-of-initialization order and leaves the supervisor in the terminal
// Shutdown state. The infinite idle wait belongs to the host harness; there
// are no retries on this path.
func (s *Supervisor) EmergencyShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emergencyShutdown()
}

// emergencyShutdown is the lock-held implementation shared with the boot and
// failover paths.
func (s *Supervisor) emergencyShutdown() {
	if s.state == StateShutdown {
		return
	}

	slog.Error("Emergency shutdown initiated")

	if err := s.mods.Store.Save(s.settings); err != nil {
		slog.Warn("Failed to persist settings", "error", err)
	}

	// Reverse of initialization order.
	s.mods.Primary.Shutdown()
	s.mods.Fallback.Shutdown()
	s.mods.Network.Shutdown()
	s.mods.Display.Shutdown()
	s.mods.Storage.Shutdown()
	s.mods.Power.Shutdown()

	s.setState(StateShutdown)
	slog.Error("System halted")
}
