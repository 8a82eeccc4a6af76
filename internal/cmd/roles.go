package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/nightfall/internal/config"
	"github.com/Iron-Ham/nightfall/internal/roster"
)

var rolesCmd = &cobra.Command{
	Use:   "roles [actors]",
	Short: "Show how roles are dealt",
	Long: `Show the role distribution for a table size.

Without an argument the configured roster size is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoles,
}

var rolesSaboteurs int

func init() {
	rootCmd.AddCommand(rolesCmd)

	rolesCmd.Flags().IntVarP(&rolesSaboteurs, "saboteurs", "s", -1, "Saboteur count (default: game.saboteurs)")
}

func runRoles(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	n := len(cfg.Game.Roster)
	if len(args) == 1 {
		n, err = strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid actor count %q", args[0])
		}
	}
	saboteurs := cfg.Game.Saboteurs
	if rolesSaboteurs >= 0 {
		saboteurs = rolesSaboteurs
	}
	return printRoles(cmd.OutOrStdout(), n, saboteurs)
}

func printRoles(out io.Writer, n, saboteurs int) error {
	dist, err := roster.Distribution(n, saboteurs)
	if err != nil {
		return err
	}

	counts := make(map[roster.Role]int)
	for _, r := range dist {
		counts[r]++
	}

	fmt.Fprintf(out, "%d actors:\n", n)
	for _, r := range []roster.Role{roster.Saboteur, roster.Seeker, roster.Protector, roster.Bystander} {
		fmt.Fprintf(out, "  %-10s %2d  (%s)\n", r, counts[r], r.Faction())
	}
	return nil
}
