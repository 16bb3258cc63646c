package domain

// ClientMessage is anything the browser sends over the websocket.
type ClientMessage struct {
	Type       string `json:"type"`
	JWT        string `json:"jwt,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Column     int    `json:"column"`
}

type ServerMessage struct {
	Type          string  `json:"type"`
	Message       string  `json:"message,omitempty"`
	GameID        string  `json:"gameId,omitempty"`
	Opponent      string  `json:"opponent,omitempty"`
	Difficulty    string  `json:"difficulty,omitempty"`
	YourPlayer    int     `json:"yourPlayer,omitempty"`
	CurrentTurn   int     `json:"currentTurn,omitempty"`
	Column        int     `json:"column"`
	Row           int     `json:"row"`
	Player        int     `json:"player,omitempty"`
	Board         [][]int `json:"board,omitempty"`
	NextTurn      int     `json:"nextTurn,omitempty"`
	Winner        string  `json:"winner,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	TimeRemaining int     `json:"timeRemaining,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
