package domain

// LeaderboardEntry represents a single row of the top-N ranking
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	PlayerID  string `json:"player_id"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	LevelName string `json:"level_name"`
}

// LevelName maps a difficulty level to its display name
func LevelName(level int) string {
	switch level {
	case 1:
		return "Easy"
	case 2:
		return "Medium"
	case 3:
		return "Hard"
	case 4:
		return "Expert"
	case 5:
		return "Insane"
	default:
		return "Unknown"
	}
}
