package main

// Messages coming from clients. A single struct with a type discriminator;
// unused fields stay empty for any given type.
type ClientMessage struct {
	Type     string `json:"type"`               // "create-room", "join-room", "host-join", "start-game", "vote-category", "submit-lie", "submit-vote", "play-again"
	Code     string `json:"code,omitempty"`     // join-room / host-join
	Name     string `json:"name,omitempty"`     // join-room
	Category string `json:"category,omitempty"` // vote-category
	Lie      string `json:"lie,omitempty"`      // submit-lie
	AnswerID *int   `json:"answerId,omitempty"` // submit-vote
}

// PlayerInfo is the wire view of a player.
type PlayerInfo struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// AnswerChoice is one votable option. The ID is the slot index into the
// room's answer list and is the only vote currency clients may use.
type AnswerChoice struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// RevealEntry is one slot of the reveal, with everyone who fell for it.
type RevealEntry struct {
	Text   string   `json:"text"`
	IsTrue bool     `json:"isTrue"`
	Author string   `json:"author,omitempty"`
	Voters []string `json:"voters"`
}

// Messages sent to clients.

type RoomCreatedMessage struct {
	Type string `json:"type"` // "room-created"
	Code string `json:"code"`
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type JoinedMessage struct {
	Type  string `json:"type"` // "joined"
	Code  string `json:"code"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Phase string `json:"phase"`
}

type HostJoinedMessage struct {
	Type    string       `json:"type"` // "host-joined"
	Code    string       `json:"code"`
	Players []PlayerInfo `json:"players"`
	Phase   string       `json:"phase"`
	State   string       `json:"state"`
}

type PlayerListMessage struct {
	Type    string       `json:"type"` // "player-list"
	Players []PlayerInfo `json:"players"`
}

type GameStartMessage struct {
	Type    string       `json:"type"` // "game-start"
	Players []PlayerInfo `json:"players"`
}

type NewRoundMessage struct {
	Type  string `json:"type"` // "new-round"
	Round int    `json:"round"`
}

type CategorySelectMessage struct {
	Type           string   `json:"type"` // "category-select"
	Categories     []string `json:"categories"`
	Round          int      `json:"round"`
	QuestionNum    int      `json:"questionNum"`
	TotalQuestions int      `json:"totalQuestions"`
	TimeMs         int64    `json:"timeMs"`
}

type ShowQuestionMessage struct {
	Type     string `json:"type"` // "show-question"
	Question string `json:"question"`
	Category string `json:"category"`
	Round    int    `json:"round"`
	TimeMs   int64  `json:"timeMs"`
}

type LiePhaseMessage struct {
	Type     string `json:"type"` // "lie-phase"
	Question string `json:"question"`
	TimeMs   int64  `json:"timeMs"`
}

type LieAcceptedMessage struct {
	Type string `json:"type"` // "lie-accepted"
}

type LieRejectedMessage struct {
	Type    string `json:"type"` // "lie-rejected"
	Message string `json:"message"`
}

type LieCountMessage struct {
	Type  string `json:"type"` // "lie-count"
	Count int    `json:"count"`
	Total int    `json:"total"`
}

type AllLiesInMessage struct {
	Type string `json:"type"` // "all-lies-in"
}

type VotePhaseMessage struct {
	Type     string         `json:"type"` // "vote-phase"
	Question string         `json:"question"`
	Answers  []AnswerChoice `json:"answers"`
	TimeMs   int64          `json:"timeMs"`
}

type YourChoicesMessage struct {
	Type    string         `json:"type"` // "your-choices"
	Answers []AnswerChoice `json:"answers"`
}

type VoteAcceptedMessage struct {
	Type string `json:"type"` // "vote-accepted"
}

type VoteCountMessage struct {
	Type  string `json:"type"` // "vote-count"
	Count int    `json:"count"`
	Total int    `json:"total"`
}

type RevealMessage struct {
	Type         string         `json:"type"` // "reveal"
	Reveals      []RevealEntry  `json:"reveals"`
	Truth        string         `json:"truth"`
	ScoreChanges map[string]int `json:"scoreChanges"`
	Players      []PlayerInfo   `json:"players"`
}

type ScoreboardMessage struct {
	Type    string       `json:"type"` // "scoreboard"
	Players []PlayerInfo `json:"players"`
	Round   int          `json:"round"`
}

type BackToLobbyMessage struct {
	Type    string       `json:"type"` // "back-to-lobby"
	Players []PlayerInfo `json:"players"`
}

type GameOverMessage struct {
	Type    string       `json:"type"` // "game-over"
	Players []PlayerInfo `json:"players"`
}

type WaitMessage struct {
	Type    string `json:"type"` // "wait"
	Message string `json:"message"`
}
