package savestate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xonix-directory/internal/codec"
	"github.com/xonix-directory/internal/domain"
)

// Header opens every save file
const Header = "XONIX_SAVE_V1"

// Tile is one claimed cell of the board
type Tile struct {
	Row   int
	Col   int
	State int
}

// Enemy is a bouncing enemy's position and velocity
type Enemy struct {
	X, Y   int
	DX, DY int
}

// State is a snapshot of a single-player game in progress
type State struct {
	SaveID    string
	Timestamp string
	PlayerID  string

	Score            int
	BonusCount       int
	PowerUps         int
	NextPowerUpScore int

	PlayerX, PlayerY   int
	PlayerDX, PlayerDY int

	PowerUpActive    bool
	PowerUpRemaining float64
	Level            int
	Background       [4]int

	Enemies []Enemy
	Grid    [][]int
	Tiles   []Tile
}

func encodeState(w *codec.Writer, s *State) {
	w.Line(Header)
	w.Line(s.SaveID)
	w.Line(s.Timestamp)
	w.Line(s.PlayerID)
	w.Int(s.Score)
	w.Int(s.BonusCount)
	w.Int(s.PowerUps)
	w.Int(s.NextPowerUpScore)
	w.Ints(s.PlayerX, s.PlayerY)
	w.Ints(s.PlayerDX, s.PlayerDY)
	if s.PowerUpActive {
		w.Int(1)
	} else {
		w.Int(0)
	}
	w.Line(strconv.FormatFloat(s.PowerUpRemaining, 'f', -1, 64))
	w.Int(s.Level)
	w.Ints(s.Background[:]...)

	codec.WriteList(w, s.Enemies, func(e Enemy) string {
		return fmt.Sprintf("%d %d %d %d", e.X, e.Y, e.DX, e.DY)
	})
	codec.WriteList(w, s.Grid, func(row []int) string {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, " ")
	})
	codec.WriteList(w, s.Tiles, func(t Tile) string {
		return fmt.Sprintf("%d %d %d", t.Row, t.Col, t.State)
	})
}

func decodeState(rd *codec.Reader) (*State, error) {
	header, err := rd.Line()
	if err != nil {
		return nil, err
	}
	if header != Header {
		return nil, fmt.Errorf("header %q: %w", header, domain.ErrInvalidSave)
	}

	s := &State{}
	if s.SaveID, err = rd.Line(); err != nil {
		return nil, err
	}
	if s.Timestamp, err = rd.Line(); err != nil {
		return nil, err
	}
	if s.PlayerID, err = rd.Line(); err != nil {
		return nil, err
	}

	for _, dst := range []*int{&s.Score, &s.BonusCount, &s.PowerUps, &s.NextPowerUpScore} {
		if *dst, err = rd.Int(); err != nil {
			return nil, err
		}
	}

	pos, err := rd.Ints(2)
	if err != nil {
		return nil, err
	}
	s.PlayerX, s.PlayerY = pos[0], pos[1]
	vel, err := rd.Ints(2)
	if err != nil {
		return nil, err
	}
	s.PlayerDX, s.PlayerDY = vel[0], vel[1]

	active, err := rd.Int()
	if err != nil {
		return nil, err
	}
	s.PowerUpActive = active != 0

	line, err := rd.Line()
	if err != nil {
		return nil, err
	}
	if s.PowerUpRemaining, err = strconv.ParseFloat(strings.TrimSpace(line), 64); err != nil {
		return nil, fmt.Errorf("line %d: %q: %w", rd.LineNo(), line, codec.ErrMalformed)
	}

	if s.Level, err = rd.Int(); err != nil {
		return nil, err
	}
	bg, err := rd.Ints(4)
	if err != nil {
		return nil, err
	}
	copy(s.Background[:], bg)

	s.Enemies, err = codec.ReadList(rd, func(line string) (Enemy, error) {
		v, err := codec.ParseInts(line, 4)
		if err != nil {
			return Enemy{}, err
		}
		return Enemy{X: v[0], Y: v[1], DX: v[2], DY: v[3]}, nil
	})
	if err != nil {
		return nil, err
	}

	s.Grid, err = codec.ReadList(rd, func(line string) ([]int, error) {
		return codec.ParseInts(line, len(strings.Fields(line)))
	})
	if err != nil {
		return nil, err
	}

	s.Tiles, err = codec.ReadList(rd, func(line string) (Tile, error) {
		v, err := codec.ParseInts(line, 3)
		if err != nil {
			return Tile{}, err
		}
		return Tile{Row: v[0], Col: v[1], State: v[2]}, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
