package redis

import (
	"fmt"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "whtetris"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// highScoresKey returns the Redis key of the high-score sorted set
func highScoresKey() string {
	return fmt.Sprintf("%s:highscores", keyPrefix)
}
