package domain

import "time"

// Status is the lifecycle state of a game session.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// QuestionView is what the host may show for the current question. It never carries the answer.
type QuestionView struct {
	Index        int          `json:"index"`
	Kind         QuestionKind `json:"kind"`
	Prompt       string       `json:"prompt"`
	Alternatives []string     `json:"alternatives,omitempty"`
	TargetRef    string       `json:"targetRef,omitempty"`
}

// Snapshot is a read-only copy of session state pushed to the display.
type Snapshot struct {
	GameID           string        `json:"gameId"`
	PlayerID         string        `json:"playerId"`
	Status           Status        `json:"status"`
	Score            int           `json:"score"`
	ElapsedTotal     float64       `json:"elapsedTotal"`
	CurrentIndex     int           `json:"currentIndex"`
	TotalQuestions   int           `json:"totalQuestions"`
	RemainingTime    float64       `json:"remainingTime"`
	TargetIdentified bool          `json:"targetIdentified"`
	AnswerLocked     bool          `json:"answerLocked"`
	Question         *QuestionView `json:"question,omitempty"`
}

// EventType names a discrete change the host can map to visuals or audio.
type EventType string

const (
	EventQuestion      EventType = "question"
	EventState         EventType = "state"
	EventCorrectAnswer EventType = "correctAnswer"
	EventWrongAnswer   EventType = "wrongAnswer"
	EventTargetFound   EventType = "targetFound"
	EventTimeout       EventType = "timeout"
	EventFinished      EventType = "finished"
)

// Event is broadcast to session subscribers on every state change.
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"snapshot"`
	// CorrectIndex is set on answer events so the host can highlight the right alternative.
	CorrectIndex *int `json:"correctIndex,omitempty"`
}

// SaveData is the persisted part of a game.
type SaveData struct {
	Score        int     `json:"score"`
	ElapsedTotal float64 `json:"elapsedTotal"`
}

// LeaderboardEntry is one ranked row of the game-over screen.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	TimeSeconds int    `json:"timeSeconds"`
	Synthetic   bool   `json:"synthetic"`
}

// Leaderboard captures the ordered results shown when a game ends.
type Leaderboard struct {
	GameID    string             `json:"gameId"`
	Entries   []LeaderboardEntry `json:"entries"`
	CreatedAt time.Time          `json:"createdAt"`
}
