package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/anandvarma/namegen"
	"github.com/spf13/cobra"
	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/social"
)

// seedOptions controls generated demo data
type seedOptions struct {
	players  int
	games    int
	requests int
	seed     int64
}

func newSeedCmd(a *app) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the directory with generated players, games and friend requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.seed(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.players, "players", 20, "Number of players to create")
	cmd.Flags().IntVar(&opts.games, "games", 3, "Games recorded per player")
	cmd.Flags().IntVar(&opts.requests, "requests", 10, "Friend requests to send")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "Random seed")
	return cmd
}

func (a *app) seed(cmd *cobra.Command, opts seedOptions) error {
	rng := rand.New(rand.NewSource(opts.seed))
	ngen := namegen.NewWithPostfixId([]namegen.DictType{namegen.Adjectives, namegen.Colors, namegen.Animals}, namegen.Numeric, 4)
	out := cmd.OutOrStdout()

	var names, ids []string
	for len(ids) < opts.players {
		name := strings.Join(strings.Fields(ngen.Get()), "_")
		if a.dir.UsernameExists(name) {
			continue
		}
		password := fmt.Sprintf("xonix#%04d", rng.Intn(10000))
		id, err := a.dir.Register(name, password)
		if err != nil {
			return fmt.Errorf("seeding player %s: %w", name, err)
		}
		names = append(names, name)
		ids = append(ids, id)
		fmt.Fprintf(out, "%s\t%s\t%s\n", id, name, password)
	}

	for i, id := range ids {
		for g := 0; g < opts.games; g++ {
			r := social.MatchResult{
				Opponent:   domain.OpponentPC,
				Score:      rng.Intn(500),
				PowerUps:   rng.Intn(4),
				Difficulty: 1 + rng.Intn(5),
			}
			if len(names) > 1 && rng.Intn(2) == 0 {
				r.Opponent = names[(i+1+rng.Intn(len(names)-1))%len(names)]
				r.Won = rng.Intn(2) == 0
			}
			if _, err := a.dir.RecordMatchResult(id, r); err != nil {
				return fmt.Errorf("seeding games for %s: %w", id, err)
			}
		}
	}

	sent := 0
	for attempt := 0; len(ids) > 1 && sent < opts.requests && attempt < opts.requests*4; attempt++ {
		from := ids[rng.Intn(len(ids))]
		to := names[rng.Intn(len(names))]
		if err := a.dir.SendFriendRequest(from, to); err != nil {
			a.logger.Debug("seed friend request skipped", "from", from, "to", to, "error", err)
			continue
		}
		sent++
	}

	a.logger.Info("seed completed", "players", len(ids), "games", len(ids)*opts.games, "friend_requests", sent)
	return nil
}
