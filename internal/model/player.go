package model

// PlayerRecord is the per-identity presence record in the store, outside any
// game. Every authenticated call refreshes LastConnected; the sweeper deletes
// records idle for longer than PlayerLifespanMS.
type PlayerRecord struct {
	ID            string `json:"id"`
	LastConnected int64  `json:"lastConnected"`
	CurrentGameID string `json:"currentGameId,omitempty"`
}

// Account is the identity-directory document backing an anonymous player.
// Deleted by the sweeper once the matching presence record is gone.
type Account struct {
	ID        string `json:"id" bson:"_id"`
	CreatedAt int64  `json:"createdAt" bson:"createdAt"`
}
