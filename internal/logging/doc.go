// Package logging provides structured logging for nightfall games.
//
// It wraps log/slog with a JSON handler and adds context propagation for the
// identifiers that matter when reading a game's debug log after the fact:
// the game ID, the acting actor, and the current phase.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(stateDir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	turnLog := logger.WithGame(id).WithPhase("night_vote").WithActor("Kaede")
//	turnLog.Debug("agent response", "raw", raw)
//
// # Runtime Level Changes
//
// The level lives in a [log/slog.LevelVar] shared by a logger and all of its
// children. [Logger.SetLevel] takes effect immediately, which lets the CLI
// apply edits to logging.level from a watched config file mid-game.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Parallel decision rounds log from
// several goroutines through child loggers of the same parent.
package logging
