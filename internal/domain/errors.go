package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no live game session.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrContentNotFound indicates the question content could not be loaded.
	ErrContentNotFound = errors.New("content not found")
	// ErrInvalidContent indicates question content that breaks the section layout.
	ErrInvalidContent = errors.New("invalid content")
	// ErrSaveNotFound is returned when no saved game exists for a player.
	ErrSaveNotFound = errors.New("save not found")
	// ErrSessionReplaced is returned to a connection whose game was replaced by a newer one.
	ErrSessionReplaced = errors.New("game session replaced by another connection")
	// ErrGameInProgress is returned when results are requested before the game finished.
	ErrGameInProgress = errors.New("game still in progress")
	// ErrInvalidInitials rejects player initials that are not 1 to 3 letters.
	ErrInvalidInitials = errors.New("initials must be 1 to 3 letters")
)
