// Package chatstate reconciles locally cached chat view state with
// realtime push events. All mutation funnels through a single dispatch
// entry point that fans out to independent reducers: the inbox list, the
// active room's message and reaction stores, the typing set, the mood
// label and the two cosmetic overlays.
package chatstate

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"alive-chat/internal/models"
)

// Settings configures a ChatState. Zero durations fall back to the
// product defaults.
type Settings struct {
	SelfID  string
	Markers MarkerStore

	// OnChange is invoked after any visible state change (re-render hook).
	// May be nil.
	OnChange func()

	TypingExpiry time.Duration
	LoveTTL      time.Duration
	ExplosionTTL time.Duration
}

// ChatState is the client-side view state for one session. It is safe for
// use from a single event loop plus the tracker/overlay timers it owns.
type ChatState struct {
	mu sync.Mutex

	selfID   string
	onChange func()

	inbox     Inbox
	messages  MessageStore
	reactions ReactionStore
	mood      Mood

	Typing    *TypingTracker
	Love      *Overlay
	Explosion *Overlay

	explosionGate *ExplosionGate
}

// New builds a ChatState for one authenticated viewer.
func New(settings Settings) *ChatState {
	loveTTL := settings.LoveTTL
	if loveTTL <= 0 {
		loveTTL = LoveOverlayTTL
	}
	explosionTTL := settings.ExplosionTTL
	if explosionTTL <= 0 {
		explosionTTL = ExplosionOverlayTTL
	}

	s := &ChatState{
		selfID:   settings.SelfID,
		onChange: settings.OnChange,
		mood:     MoodNeutral,
	}
	s.Typing = NewTypingTracker(settings.SelfID, settings.TypingExpiry, settings.OnChange)
	s.Love = NewOverlay(loveTTL, settings.OnChange)
	s.Explosion = NewOverlay(explosionTTL, settings.OnChange)
	if settings.Markers != nil {
		s.explosionGate = NewExplosionGate(settings.SelfID, settings.Markers)
	}
	return s
}

// LoadInbox replaces the inbox with a newest-first flat history.
func (s *ChatState) LoadInbox(history []models.Message) {
	s.mu.Lock()
	s.inbox.Load(history)
	s.mu.Unlock()
	s.notify()
}

// SetInbox replaces the inbox with an already-derived conversation list.
func (s *ChatState) SetInbox(entries []models.Conversation) {
	s.mu.Lock()
	s.inbox.Set(entries)
	s.mu.Unlock()
	s.notify()
}

// EnterRoom activates a room, replacing message and reaction state with
// the fetched history and re-running the derived mood and explosion scan.
func (s *ChatState) EnterRoom(roomID string, history []models.Message, reactions []models.Reaction) {
	s.mu.Lock()
	s.messages.Activate(roomID, history)
	s.reactions.Activate(roomID, reactions)
	s.mood = ClassifyMood(s.messages.msgs)
	s.mu.Unlock()

	s.Typing.Reset()
	s.scanExplosion()
	s.notify()
}

// LeaveRoom clears all room-scoped state, returning to the inbox.
func (s *ChatState) LeaveRoom() {
	s.mu.Lock()
	s.messages.Activate("", nil)
	s.reactions.Activate("", nil)
	s.mood = MoodNeutral
	s.mu.Unlock()

	s.Typing.Reset()
	s.notify()
}

// Dispatch is the single entry point for realtime events. Every event
// fans out to the reducers that care about it.
func (s *ChatState) Dispatch(ev models.RealtimeEvent) {
	switch ev.Type {
	case models.EventMessage:
		if ev.Message != nil {
			s.applyMessage(*ev.Message)
		}
	case models.EventReaction:
		if ev.Reaction != nil {
			s.applyReaction(*ev.Reaction)
		}
	case models.EventEffect:
		if ev.Effect != nil {
			s.applyEffect(*ev.Effect)
		}
	case models.EventTyping:
		if ev.Typing != nil {
			s.Typing.Observe(ev.Typing.UserID)
		}
	}
}

func (s *ChatState) applyMessage(msg models.Message) {
	s.mu.Lock()
	s.inbox.Upsert(msg)
	applied := s.messages.Apply(msg)
	if applied {
		s.mood = ClassifyMood(s.messages.msgs)
	}
	s.mu.Unlock()

	if applied {
		s.scanExplosion()
	}
	s.notify()
}

func (s *ChatState) applyReaction(r models.Reaction) {
	s.mu.Lock()
	applied := s.reactions.Apply(r)
	s.mu.Unlock()

	if applied {
		s.notify()
	}
}

func (s *ChatState) applyEffect(e models.Effect) {
	s.mu.Lock()
	room := s.messages.Room()
	s.mu.Unlock()

	if room == "" || e.ConversationID != room {
		return
	}
	if e.Kind == models.EffectLovePair {
		s.Love.Show(models.EffectLovePair)
	}
}

func (s *ChatState) scanExplosion() {
	if s.explosionGate == nil {
		return
	}

	s.mu.Lock()
	room := s.messages.Room()
	msgs := s.messages.Messages()
	s.mu.Unlock()

	fire, err := s.explosionGate.Scan(room, msgs)
	if err != nil {
		log.Error().Err(err).Str("room", room).Msg("explosion marker check failed")
		return
	}
	if fire {
		s.Explosion.Show("explosion")
	}
}

// Inbox returns the current derived conversation list.
func (s *ChatState) Inbox() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inbox.Entries()
}

// Room returns the active room id, empty on the inbox screen.
func (s *ChatState) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages.Room()
}

// Messages returns the active room's ordered message list.
func (s *ChatState) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages.Messages()
}

// Reactions returns the ordered reaction list of one message.
func (s *ChatState) Reactions(messageID int64) []models.Reaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reactions.For(messageID)
}

// ReactionCounts aggregates one message's reactions into emoji counts.
func (s *ChatState) ReactionCounts(messageID int64) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reactions.Counts(messageID)
}

// Mood returns the room's current sentiment label.
func (s *ChatState) Mood() Mood {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mood
}

// Close tears down the timers owned by the state.
func (s *ChatState) Close() {
	s.Typing.Close()
	s.Love.Close()
	s.Explosion.Close()
}

func (s *ChatState) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
