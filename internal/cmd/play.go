package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/agent"
	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/dispatch"
	"github.com/Iron-Ham/nightfall/internal/errors"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/game"
	"github.com/Iron-Ham/nightfall/internal/logging"
	"github.com/Iron-Ham/nightfall/internal/render"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/store"
	"github.com/Iron-Ham/nightfall/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game",
	Long: `Deal roles and play one game to the end.

By default you sit at the table as player.name and decide for that actor.
Use --mode character_view to watch through that actor's eyes without
taking turns, or --mode omniscient to see every role and every thought.

Examples:
  # Play as Hazel against the offline agent
  nightfall play --name Hazel --backend scripted

  # Watch a reproducible game with every role visible
  nightfall play --mode omniscient --seed 42 --pacing 0`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Uint64("seed", 0, "Seed for role dealing and tie-breaks (0 = random)")
	playCmd.Flags().StringP("name", "n", "", "Actor the human plays or watches")
	playCmd.Flags().StringP("mode", "m", "", "player, character_view or omniscient")
	playCmd.Flags().StringP("backend", "b", "", "Agent backend: scripted, claude, anthropic or openai")
	playCmd.Flags().Float64("pacing", 1, "Scale for pauses between entries (0 = no pauses)")
	playCmd.Flags().String("db", "", "SQLite journal to record the game in")

	for key, flag := range map[string]string{
		"game.seed":      "seed",
		"player.name":    "name",
		"player.mode":    "mode",
		"agent.backend":  "backend",
		"display.pacing": "pacing",
		"store.path":     "db",
	} {
		_ = viper.BindPFlag(key, playCmd.Flags().Lookup(flag))
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger, err := logging.NewLogger(cfg.LogDir(), cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = logger.Close() }()
	watchLogLevel(logger)

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	var ask tui.Asker = tui.NewLines(in, out)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ask = tui.Program{In: in, Out: out}
	}

	return playGame(ctx, cfg, logger, ask, out)
}

// playGame sets up one game from cfg and plays it to the end.
func playGame(ctx context.Context, cfg *config.Config, logger *logging.Logger, ask tui.Asker, out io.Writer) error {
	id := uuid.NewString()
	logger = logger.WithGame(id)

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	a, err := agent.NewFromConfig(cfg.Agent, seed)
	if err != nil {
		return err
	}

	settings := game.Settings{
		ID:        id,
		Names:     cfg.Game.Roster,
		Saboteurs: cfg.Game.Saboteurs,
		Seed:      seed,
		Seat:      game.Seat{Name: cfg.Player.Name, Mode: cfg.Player.Mode},
	}

	var journal *store.Store
	if cfg.Store.Path != "" {
		journal, err = store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return err
		}
		defer func() { _ = journal.Close() }()
		settings.Sinks = append(settings.Sinks, journal.Sink(id))
	}
	if cfg.Store.TranscriptDir != "" {
		t := actionlog.NewTranscript(cfg.Store.TranscriptDir, id)
		settings.Sinks = append(settings.Sinks, t)
		logger.Info("writing transcript", "path", t.Path())
	}

	s, err := game.NewSession(settings)
	if err != nil {
		return err
	}
	if journal != nil {
		if err := journal.CreateGame(ctx, store.Game{
			ID:     s.ID,
			Seed:   s.Seed,
			Seat:   s.Seat.Name,
			Mode:   s.Seat.Mode,
			Actors: s.Roster.Actors(),
		}); err != nil {
			return err
		}
	}
	logger.Info("game created", "seed", s.Seed, "actors", len(s.Roster.Actors()),
		"backend", cfg.Agent.Backend, "seat", s.Seat.Name, "mode", s.Seat.Mode)

	view, opts, err := viewFor(cfg, s.Roster)
	if err != nil {
		return err
	}
	bus := event.NewBus(logger)
	render.New(out, view, opts...).Attach(bus)

	eng := game.NewEngine(s, a,
		game.WithBus(bus),
		game.WithLogger(logger),
		game.WithDispatchOptions(
			dispatch.WithMaxAttempts(cfg.Dispatch.MaxAttempts),
			dispatch.WithRetryWait(cfg.Dispatch.RetryWait()),
			dispatch.WithMaxParallel(cfg.Dispatch.MaxParallel),
			dispatch.WithAllowPartial(cfg.Dispatch.AllowPartial),
			dispatch.WithPersonas(cfg.Game.Persona),
		),
	)

	if err := drive(ctx, eng, ask, out); err != nil {
		return err
	}

	winner, _ := s.Winner()
	logger.Info("game finished", "winner", string(winner), "days", s.Day, "entries", s.Log.Len())
	if journal != nil {
		if err := journal.FinishGame(context.WithoutCancel(ctx), s.ID, winner); err != nil {
			return err
		}
	}
	return nil
}

// viewFor picks whose eyes the transcript is shown through.
func viewFor(cfg *config.Config, r *roster.Roster) (render.View, []render.Option, error) {
	opts := []render.Option{
		render.WithPacing(cfg.Display.Pacing),
		render.WithColor(cfg.Display.Color),
	}
	if cfg.Player.Mode == config.ModeOmniscient || cfg.Player.Name == "" {
		return render.View{}, append(opts, render.WithRoles(roleMap(r.Actors()))), nil
	}
	role, err := r.RoleOf(cfg.Player.Name)
	if err != nil {
		return render.View{}, nil, err
	}
	return render.View{Viewer: cfg.Player.Name, Role: role}, opts, nil
}

func roleMap(actors []roster.Actor) map[string]roster.Role {
	roles := make(map[string]roster.Role, len(actors))
	for _, a := range actors {
		roles[a.Name] = a.Role
	}
	return roles
}

// drive advances eng to the end, asking the seat whenever the game waits
// on it. Rejected answers are reported and asked again.
func drive(ctx context.Context, eng *game.Engine, ask tui.Asker, out io.Writer) error {
	if err := eng.Advance(ctx); err != nil {
		return err
	}
	for {
		req, ok := eng.Pending()
		if !ok {
			return nil
		}
		in, err := ask.Ask(ctx, req)
		if err == nil {
			err = eng.Submit(ctx, in)
		}
		if err == nil {
			continue
		}
		var verr *errors.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fmt.Fprintln(out, verr.Error())
	}
}
