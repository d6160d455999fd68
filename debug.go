package ambient

// debugLog reports one governor window with the engine's work counters.
func (e *Engine) debugLog(s Sample) {
	st := e.stats
	e.log.Debug("ambient window",
		"theme", e.theme.ID,
		"fps", s.FPS,
		"frames", s.Frames,
		"mode", s.Mode.String(),
		"live", s.Live,
		"capacity", e.Capacity(),
		"opacity", e.fade.opacity,
	)
	e.log.Debug("ambient work",
		"ticks", st.Ticks,
		"updates", st.Updates,
		"renders", st.Renders,
		"skipped_updates", st.SkippedUpdates,
		"skipped_renders", st.SkippedRenders,
		"spawned", st.Spawned,
		"culled", st.Culled,
		"drawn", st.Drawn,
	)
}
