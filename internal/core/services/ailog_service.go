package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

var (
	ErrPremiumRequired      = errors.New("ai logging is a premium feature")
	ErrEmptyLogInput        = errors.New("log input cannot be empty")
	ErrNoCompleter          = errors.New("no completion backend is configured")
	ErrUnparsableCompletion = errors.New("completion response contained no candidate array")
	ErrSessionNotFound      = errors.New("ai log session not found")
	ErrCandidateNotFound    = errors.New("candidate not found in session")
	ErrCandidateSkipped     = errors.New("habit is not due on the selected date")
	ErrAlreadyLogged        = errors.New("habit already logged in this session")
	ErrNotLoggable          = errors.New("candidate cannot be logged")
	ErrNotRegistrable       = errors.New("candidate does not need registration")
)

// Completer is the text-completion capability the orchestrator depends
// on; the adapters package provides the concrete backends.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
	Name() string
}

// basePrompt is the fixed preamble. The closed habit vocabularies are
// appended at build time so the model can only answer in terms of known
// names.
const basePrompt = `You are a habit tracking assistant. The user describes their day in free text. ` +
	`Identify every activity that matches a preset habit and respond with a JSON array of strings, ` +
	`one per recognized activity, each formatted exactly as "Habit Name | Number Unit". ` +
	`Static habits have no number or unit; output them as "Habit Name | 1". ` +
	`Respond with the JSON array only, no other text.`

var candidateArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// Candidate statuses as shown in the AI-log table.
const (
	CandidateLoggable     = "loggable"
	CandidateSkipped      = "skipped"
	CandidateUnregistered = "unregistered"
	CandidateRaw          = "raw"
)

// SessionTTL caps how long an unreviewed session stays resident.
// Sessions a client abandons without clearing are evicted lazily on the
// next generate, so the map stays bounded by the generate rate within
// one TTL window.
const SessionTTL = 30 * time.Minute

// Candidate is one generated note line after parsing and gating.
type Candidate struct {
	Raw    string      `json:"raw"`
	Note   domain.Note `json:"note"`
	Status string      `json:"status"`
	Logged bool        `json:"logged"`
}

// Session holds the state of one generate/review/log round trip. The
// logged-set is intentionally memory-only UI debounce: it dies with the
// session and never reaches storage.
type Session struct {
	ID         string       `json:"id"`
	UserID     string       `json:"-"`
	Date       string       `json:"date"`
	Candidates []*Candidate `json:"candidates"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (s *Session) expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > SessionTTL
}

func (s *Session) find(habitName string) *Candidate {
	for _, c := range s.Candidates {
		if strings.EqualFold(strings.TrimSpace(c.Note.Habit), strings.TrimSpace(habitName)) {
			return c
		}
	}
	return nil
}

// AILogService turns a freeform daily log into reviewed habit updates.
type AILogService struct {
	habits    *HabitService
	settings  *SettingsService
	completer Completer

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewAILogService(habits *HabitService, settings *SettingsService, completer Completer) *AILogService {
	return &AILogService{
		habits:    habits,
		settings:  settings,
		completer: completer,
		sessions:  make(map[string]*Session),
	}
}

// BuildPrompt assembles the system prompt with the closed habit-name
// vocabularies.
func BuildPrompt() string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nYou must only use the following preset habits for all operations.\n")
	b.WriteString("Dynamic limitation habits (these can have a goal/number/unit): ")
	b.WriteString(strings.Join(domain.DynamicVocabulary, ", "))
	b.WriteString(".\nStatic habits (these do not have a goal/number/unit): ")
	b.WriteString(strings.Join(domain.StaticVocabulary, ", "))
	b.WriteString(".\nDo not allow custom habits. Use only these names exactly as given. Only allow goals for dynamic habits.")
	return b.String()
}

// extractCandidateLines pulls the first JSON array literal out of the
// completion text and decodes it.
func extractCandidateLines(text string) ([]string, error) {
	match := candidateArrayPattern.FindString(text)
	if match == "" {
		return nil, ErrUnparsableCompletion
	}

	var lines []string
	if err := json.Unmarshal([]byte(match), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableCompletion, err)
	}

	return lines, nil
}

func (s *AILogService) requirePremium(ctx context.Context, userID string) error {
	premium, err := s.settings.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if !premium {
		return ErrPremiumRequired
	}
	return nil
}

// Generate sends the user's freeform text to the completion backend and
// builds a session of gated candidates evaluated against the given
// date. One attempt, no retry: any backend failure surfaces to the
// caller with the input preserved client-side.
func (s *AILogService) Generate(ctx context.Context, userID string, date time.Time, input string) (*Session, error) {
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyLogInput
	}

	if s.completer == nil {
		return nil, ErrNoCompleter
	}

	text, err := s.completer.Complete(ctx, BuildPrompt(), input)
	if err != nil {
		return nil, err
	}

	lines, err := extractCandidateLines(text)
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      date.UTC().Format(domain.ProgressDateLayout),
		CreatedAt: time.Now().UTC(),
	}

	for _, line := range lines {
		note := domain.ParseNote(line)
		candidate := &Candidate{Raw: line, Note: note, Status: s.classify(note, habits, date)}
		session.Candidates = append(session.Candidates, candidate)
	}

	s.mu.Lock()
	s.evictExpiredLocked(session.CreatedAt)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	log.Printf("AI log session %s: %d candidates via %s", session.ID, len(session.Candidates), s.completer.Name())

	return session, nil
}

// classify gates a parsed note. A known habit that is off-schedule for
// the date is surfaced as skipped, never silently dropped.
func (s *AILogService) classify(note domain.Note, habits []*domain.Habit, date time.Time) string {
	var known *domain.Habit
	for _, h := range habits {
		if h.SameTitle(note.Habit) {
			known = h
			break
		}
	}

	if known == nil {
		if note.Parsed() || domain.IsStaticHabit(note.Habit) || domain.IsDynamicHabit(note.Habit) {
			return CandidateUnregistered
		}
		return CandidateRaw
	}

	if !known.Repetition.DueOn(date) {
		return CandidateSkipped
	}

	// A bare title line carries no quantity. For a goal habit that
	// leaves nothing to log, so the mention stays raw.
	if known.GoalEnabled && !note.Parsed() {
		return CandidateRaw
	}

	return CandidateLoggable
}

// evictExpiredLocked drops sessions past their TTL. Caller holds the
// write lock.
func (s *AILogService) evictExpiredLocked(now time.Time) {
	for id, session := range s.sessions {
		if session.expired(now) {
			delete(s.sessions, id)
		}
	}
}

func (s *AILogService) session(userID, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID || session.expired(time.Now().UTC()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Log writes one candidate's quantity into the habit's progress for the
// session date. Allowed once per habit name per session; the write
// replaces any value already stored for that date.
func (s *AILogService) Log(ctx context.Context, userID, sessionID, habitName string) (*domain.Habit, error) {
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := session.find(habitName)
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}

	switch candidate.Status {
	case CandidateSkipped:
		return nil, ErrCandidateSkipped
	case CandidateLoggable:
	default:
		return nil, ErrNotLoggable
	}

	if candidate.Logged {
		return nil, ErrAlreadyLogged
	}

	habit, err := s.habits.repo.GetByTitle(ctx, userID, candidate.Note.Habit)
	if err != nil {
		return nil, err
	}

	value := 1.0
	if habit.GoalEnabled && candidate.Note.Parsed() {
		value, err = strconv.ParseFloat(candidate.Note.Number, 64)
		if err != nil {
			return nil, ErrNotLoggable
		}
		if habit.GoalUnit != "" && candidate.Note.Unit != "" {
			converted, ok := domain.ConvertUnit(value, candidate.Note.Unit, habit.GoalUnit)
			if !ok {
				// Incompatible units pass through unconverted on purpose;
				// only pairs with a defined ratio are rescaled.
				log.Printf("AI log: no conversion from %q to %q, logging raw value", candidate.Note.Unit, habit.GoalUnit)
			}
			value = converted
		}
	}

	updated, err := s.habits.LogProgress(ctx, LogProgressInput{
		ID:     habit.ID,
		UserID: userID,
		Date:   session.Date,
		Value:  value,
	})
	if err != nil {
		return nil, err
	}

	candidate.Logged = true

	return updated, nil
}

// Register creates a habit for an unknown candidate name: repetition
// every day, zero progress, and a goal taken from the candidate only
// when the name is in the dynamic vocabulary.
func (s *AILogService) Register(ctx context.Context, userID, sessionID, habitName string) (*domain.Habit, error) {
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := session.find(habitName)
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}
	if candidate.Status != CandidateUnregistered {
		return nil, ErrNotRegistrable
	}

	input := CreateHabitInput{
		UserID:     userID,
		Title:      candidate.Note.Habit,
		Repetition: domain.EverydayRule(),
	}

	if domain.IsDynamicHabit(candidate.Note.Habit) && candidate.Note.Parsed() {
		goal, err := strconv.ParseFloat(candidate.Note.Number, 64)
		if err == nil && goal > 0 {
			input.GoalEnabled = true
			input.GoalValue = goal
			input.GoalUnit = candidate.Note.Unit
			input.GoalType = domain.GoalTypeMin
		}
	}

	habit, err := s.habits.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	candidate.Status = CandidateLoggable

	return habit, nil
}

// Clear discards a session and with it the per-session logged-set.
func (s *AILogService) Clear(userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrSessionNotFound
	}
	if session.expired(time.Now().UTC()) {
		delete(s.sessions, sessionID)
		return ErrSessionNotFound
	}

	delete(s.sessions, sessionID)
	return nil
}
