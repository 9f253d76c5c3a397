package chatstate

import (
	"alive-chat/internal/models"
)

// Mood is the coarse sentiment label of the active room.
type Mood string

const (
	MoodNeutral Mood = "neutral"
	MoodSoft    Mood = "soft"
	MoodAngry   Mood = "angry"
)

// moodWindow is how many of the most recent messages the classifier
// examines. Product heuristic, kept literal.
const moodWindow = 15

// ClassifyMood is a pure function over the most recent messages' mood
// tags. Precedence: angry wins when angry >= soft+2 and angry >= 2, then
// soft when soft >= angry and soft >= 2, otherwise neutral.
func ClassifyMood(msgs []models.Message) Mood {
	if len(msgs) == 0 {
		return MoodNeutral
	}

	recent := msgs
	if len(recent) > moodWindow {
		recent = recent[len(recent)-moodWindow:]
	}

	var angry, soft int
	for _, m := range recent {
		switch m.Mood {
		case models.MoodAngry:
			angry++
		case models.MoodSoft:
			soft++
		}
	}

	switch {
	case angry >= soft+2 && angry >= 2:
		return MoodAngry
	case soft >= angry && soft >= 2:
		return MoodSoft
	default:
		return MoodNeutral
	}
}
