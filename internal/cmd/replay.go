package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/nightfall/internal/actionlog"
	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/event"
	"github.com/Iron-Ham/nightfall/internal/game"
	"github.com/Iron-Ham/nightfall/internal/render"
	"github.com/Iron-Ham/nightfall/internal/roster"
	"github.com/Iron-Ham/nightfall/internal/store"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a journaled game",
	Long: `Print a recorded game from the SQLite journal.

Without --viewer the whole game is shown with every role and thought.
With --viewer the transcript is filtered to what that actor could see.

Examples:
  # Replay the most recent game
  nightfall replay --db nightfall.db

  # What did Hazel see in a given game?
  nightfall replay --db nightfall.db --game 3f2c... --viewer Hazel

  # Only entries by actors whose names start with A or B
  nightfall replay --db nightfall.db --actor '[AB]*'

  # List journaled games
  nightfall replay --db nightfall.db --list`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

var (
	replayDB     string
	replayGame   string
	replayViewer string
	replayActor  string
	replayPacing float64
	replayList   bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayDB, "db", "", "SQLite journal (default: store.path)")
	replayCmd.Flags().StringVarP(&replayGame, "game", "g", "", "Game ID (default: most recent)")
	replayCmd.Flags().StringVarP(&replayViewer, "viewer", "v", "", "Show the game as this actor saw it")
	replayCmd.Flags().StringVarP(&replayActor, "actor", "a", "", "Only show entries by actors matching this glob")
	replayCmd.Flags().Float64Var(&replayPacing, "pacing", 0, "Scale for pauses between entries")
	replayCmd.Flags().BoolVarP(&replayList, "list", "l", false, "List journaled games instead")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := replayDB
	if path == "" {
		path = cfg.Store.Path
	}
	if path == "" {
		return fmt.Errorf("no journal: pass --db or set store.path")
	}

	st, err := store.Open(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if replayList {
		return listGames(cmd.Context(), st, cmd.OutOrStdout())
	}
	return replay(cmd.Context(), st, replayOptions{
		Game:   replayGame,
		Viewer: replayViewer,
		Actor:  replayActor,
		Pacing: replayPacing,
		Color:  cfg.Display.Color,
	}, cmd.OutOrStdout())
}

type replayOptions struct {
	Game   string
	Viewer string
	// Actor is a glob over entry authors; system entries always pass.
	Actor  string
	Pacing float64
	Color  bool
}

func replay(ctx context.Context, st *store.Store, opts replayOptions, out io.Writer) error {
	var (
		g   store.Game
		err error
	)
	if opts.Game == "" {
		g, err = st.LatestGame(ctx)
	} else {
		g, err = st.Game(ctx, opts.Game)
	}
	if err != nil {
		return err
	}

	r, err := roster.New(g.Actors)
	if err != nil {
		return fmt.Errorf("game %s has a bad roster: %w", g.ID, err)
	}

	var match glob.Glob
	if opts.Actor != "" {
		match, err = glob.Compile(opts.Actor)
		if err != nil {
			return fmt.Errorf("invalid --actor pattern %q: %w", opts.Actor, err)
		}
	}

	view := render.View{}
	ropts := []render.Option{render.WithPacing(opts.Pacing), render.WithColor(opts.Color)}
	if opts.Viewer != "" {
		role, err := r.RoleOf(opts.Viewer)
		if err != nil {
			return err
		}
		view = render.View{Viewer: opts.Viewer, Role: role}
	} else {
		ropts = append(ropts, render.WithRoles(roleMap(g.Actors)))
	}
	p := render.New(out, view, ropts...)

	entries, err := st.Entries(ctx, g.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Game %s · seed %d · %s\n\n", g.ID, g.Seed, g.CreatedAt.Format("2006-01-02 15:04"))
	day := 0
	for _, e := range entries {
		day = e.Day
		if match != nil && e.Kind != actionlog.KindSystem && !match.Match(e.Actor) {
			continue
		}
		p.Handle(event.NewEntryAppendedEvent(e, game.Pacing(e)))
	}
	if g.Winner != "" {
		p.Handle(event.NewGameOverEvent(g.Winner, day))
	} else {
		fmt.Fprintln(out, "\nThe game did not finish.")
	}
	return nil
}

func listGames(ctx context.Context, st *store.Store, out io.Writer) error {
	games, err := st.Games(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(out, "No games recorded.")
		return nil
	}
	for _, g := range games {
		winner := string(g.Winner)
		if winner == "" {
			winner = "unfinished"
		}
		seat := g.Seat
		if seat == "" {
			seat = "-"
		}
		fmt.Fprintf(out, "%s  %s  seat=%s mode=%s  %s\n",
			g.ID, g.CreatedAt.Format("2006-01-02 15:04"), seat, g.Mode, winner)
	}
	return nil
}
