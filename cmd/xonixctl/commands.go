package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xonix-directory/internal/catalog"
	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/social"
)

// resolve maps a username to its id
func (a *app) resolve(username string) (string, error) {
	id := a.dir.FindIDByUsername(username)
	if id == "" {
		return "", fmt.Errorf("player %q: %w", username, domain.ErrNotFound)
	}
	return id, nil
}

// usernames maps ids to display names, keeping ids that cannot be loaded
func (a *app) usernames(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if p, err := a.dir.LoadRecord(id); err == nil {
			out[i] = p.Username
		}
	}
	return out
}

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <password>",
		Short: "Create a new player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.dir.Register(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s with id %s\n", strings.TrimRight(args[0], " "), id)
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Check a player's credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.dir.Login(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome %s (id %s)\n", p.Username, p.ID)
			return nil
		},
	}
}

func newPasswdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username> <old-password> <new-password>",
		Short: "Change a player's password",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.dir.Login(args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.dir.ChangePassword(p.ID, args[2]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password changed")
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <username>",
		Short: "Print the id for a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <username>",
		Short: "Print a player's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.dir.PlayerByUsername(args[0])
			if err != nil {
				return err
			}
			theme, _ := a.dir.Catalog().Find(a.dir.Catalog().Resolve(p.PreferredTheme))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "id\t%s\n", p.ID)
			fmt.Fprintf(tw, "username\t%s\n", p.Username)
			fmt.Fprintf(tw, "registered\t%s\n", p.RegisteredAt)
			fmt.Fprintf(tw, "high score\t%d (%s)\n", p.HighScore, domain.LevelName(p.HighScoreLevel))
			fmt.Fprintf(tw, "power-ups\t%d\n", p.PowerUps)
			fmt.Fprintf(tw, "theme\t%d %s\n", theme.ID, theme.Name)
			fmt.Fprintf(tw, "friends\t%s\n", strings.Join(a.usernames(p.Friends), ", "))
			fmt.Fprintf(tw, "pending\t%s\n", strings.Join(a.usernames(p.PendingRequests), ", "))
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, line := range p.MatchHistory {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", line)
			}
			return nil
		},
	}
}

func newFriendCmd(a *app) *cobra.Command {
	friend := &cobra.Command{
		Use:   "friend",
		Short: "Manage friend requests",
	}

	friend.AddCommand(&cobra.Command{
		Use:   "send <from> <to>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := a.dir.SendFriendRequest(from, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "friend request sent to %s\n", args[1])
			return nil
		},
	})

	friend.AddCommand(&cobra.Command{
		Use:   "accept <username> [requester]",
		Short: "Accept a request, the most recent one when no requester is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			var requester string
			if len(args) == 2 {
				if requester, err = a.resolve(args[1]); err != nil {
					return err
				}
				err = a.dir.AcceptFriendRequest(id, requester)
			} else {
				requester, err = a.dir.AcceptLatestFriendRequest(id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are now friends\n", args[0], a.usernames([]string{requester})[0])
			return nil
		},
	})

	friend.AddCommand(&cobra.Command{
		Use:   "reject <username> <requester>",
		Short: "Reject a pending request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			requester, err := a.resolve(args[1])
			if err != nil {
				return err
			}
			return a.dir.RejectFriendRequest(id, requester)
		},
	})

	friend.AddCommand(&cobra.Command{
		Use:   "list <username>",
		Short: "List friends and pending requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			friends, err := a.dir.Friends(id)
			if err != nil {
				return err
			}
			pending, err := a.dir.PendingRequests(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "friends: %s\n", strings.Join(a.usernames(friends), ", "))
			fmt.Fprintf(out, "pending: %s\n", strings.Join(a.usernames(pending), ", "))
			return nil
		},
	})

	return friend
}

func newPlayCmd(a *app) *cobra.Command {
	var r social.MatchResult

	cmd := &cobra.Command{
		Use:   "play <username>",
		Short: "Record a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			p, err := a.dir.RecordMatchResult(id, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (high score %d)\n", p.Username, social.FormatHistory(r), p.HighScore)
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Opponent, "opponent", domain.OpponentPC, "Opponent username, PC for single player")
	cmd.Flags().BoolVar(&r.Won, "won", false, "Whether the player won")
	cmd.Flags().IntVar(&r.Score, "score", 0, "Final score")
	cmd.Flags().IntVar(&r.PowerUps, "powerups", 0, "Power-ups held at the end")
	cmd.Flags().IntVar(&r.Difficulty, "level", 1, "Difficulty level 1-5")
	return cmd
}

func newThemesCmd(a *app) *cobra.Command {
	themes := &cobra.Command{
		Use:   "themes",
		Short: "Browse the theme catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tDESCRIPTION")
			for _, th := range a.dir.Catalog().Browse() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", th.ID, th.Name, th.ColorTag, th.Description)
			}
			return tw.Flush()
		},
	}

	themes.AddCommand(&cobra.Command{
		Use:   "show <id|name>",
		Short: "Show one theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := findTheme(a.dir.Catalog(), args[0])
			if err != nil {
				return err
			}
			c := catalog.BackgroundColor(th.ColorTag)
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n%s\nasset: %s\ncolor: rgba(%d,%d,%d,%d)\n",
				th.ID, th.Name, th.Description, th.AssetPath, c.R, c.G, c.B, c.A)
			return nil
		},
	})

	themes.AddCommand(&cobra.Command{
		Use:   "set <username> <id|name>",
		Short: "Save a player's preferred theme",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			th, err := findTheme(a.dir.Catalog(), args[1])
			if err != nil {
				return err
			}
			if err := a.dir.Catalog().SavePreference(id, th.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now uses %s\n", args[0], th.Name)
			return nil
		},
	})

	return themes
}

func findTheme(c *catalog.Catalog, key string) (catalog.Theme, error) {
	if n, err := strconv.Atoi(key); err == nil {
		return c.Find(n)
	}
	return c.FindByName(key)
}

func newLeaderboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tLEVEL")
			for _, e := range a.dir.RebuildAndGetTop() {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", e.Rank, e.Username, e.Score, e.LevelName)
			}
			return tw.Flush()
		},
	}
}

func newMatchCmd(a *app) *cobra.Command {
	var leave []string

	cmd := &cobra.Command{
		Use:   "match <username>...",
		Short: "Queue players, pair them by skill and print the matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range args {
				if _, err := a.dir.JoinMatchmaking(name); err != nil {
					if domain.IsCapacityError(err) {
						return err
					}
					fmt.Fprintf(out, "skipping %s: %v\n", name, err)
				}
			}
			for _, name := range leave {
				if id := a.dir.FindIDByUsername(name); id != "" {
					a.dir.LeaveMatchmaking(id)
				}
			}

			n := a.dir.CreateMatches()
			fmt.Fprintf(out, "%d match(es) created\n", n)
			for {
				m, err := a.dir.NextMatch()
				if errors.Is(err, domain.ErrEmpty) {
					break
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s (%d) vs %s (%d)\n", m.ID, m.P1Username, m.P1Score, m.P2Username, m.P2Score)
			}
			for _, p := range a.dir.Room().WaitingList() {
				fmt.Fprintf(out, "waiting: %s (%d)\n", p.Username, p.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&leave, "leave", nil, "Players who leave the queue before pairing")
	return cmd
}

func newSavesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "saves <username>",
		Short: "List a player's saved games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			ids, err := a.dir.ListSaves(id)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SAVE\tTIME\tSCORE\tLEVEL\tTILES")
			for _, saveID := range ids {
				st, err := a.dir.LoadGame(saveID)
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", saveID, err)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", st.SaveID, st.Timestamp, st.Score, st.Level, len(st.Tiles))
			}
			return tw.Flush()
		},
	}
}

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Dump the username index buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.dir.Index().Dump(cmd.OutOrStdout())
		},
	}
}

func newReconcileCmd(a *app) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare the id list with the record files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.dir.Reconcile(repair)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.Clean() {
				fmt.Fprintln(out, "id list and record files agree")
				return nil
			}
			fmt.Fprintf(out, "orphans: %s\n", strings.Join(report.Orphans, " "))
			fmt.Fprintf(out, "missing: %s\n", strings.Join(report.Missing, " "))
			fmt.Fprintf(out, "corrupt: %s\n", strings.Join(report.Corrupt, " "))
			if repair {
				fmt.Fprintf(out, "adopted: %d\n", report.Adopted)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "Append orphan records to the id list")
	return cmd
}
