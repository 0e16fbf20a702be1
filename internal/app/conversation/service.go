package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/eco-agent/internal/app/greeting"
	"github.com/PabloGalante/eco-agent/internal/app/prompt"
	"github.com/PabloGalante/eco-agent/internal/app/triggers"
	"github.com/PabloGalante/eco-agent/internal/domain"
	"github.com/PabloGalante/eco-agent/internal/observability"
)

const (
	defaultHistoryLimit = 20
	titleMaxRunes       = 60
)

// Service runs the conversation flow: greeting shortcut, practice and topic
// detection, prompt assembly, LLM call and persistence.
type Service struct {
	llm          domain.LLMClient
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	detector     *triggers.Detector
	assembler    *prompt.Assembler

	greeter      *greeting.Pipeline
	threshold    float64
	historyLimit int

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithGreeting enables the canned greeting/farewell shortcut.
func WithGreeting(p *greeting.Pipeline) Option {
	return func(s *Service) { s.greeter = p }
}

// WithThreshold overrides triggers.DefaultThreshold.
func WithThreshold(th float64) Option {
	return func(s *Service) { s.threshold = th }
}

func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	llm domain.LLMClient,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	detector *triggers.Detector,
	assembler *prompt.Assembler,
	opts ...Option,
) *Service {
	s := &Service{
		llm:          llm,
		sessionStore: sessionStore,
		messageStore: messageStore,
		detector:     detector,
		assembler:    assembler,
		threshold:    triggers.DefaultThreshold,
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type StartSessionInput struct {
	UserID domain.UserID
	Title  string
}

type StartSessionOutput struct {
	Session *domain.Session
}

// StartSession creates an empty session. No welcome message is stored so
// the first "oi" still reaches the greeting shortcut.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)
	log.Info("starting new session")

	session := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		UserID:    in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		Title:     strings.TrimSpace(in.Title),
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{Session: session}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	UserID    domain.UserID
	Text      string

	UserName   string
	ClientHour *int
	ClientTZ   string

	OpennessLevel    *int
	Intensity        *int
	MinutesAvailable *int
}

type SendMessageOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message

	// Shortcut is set when a canned greeting or farewell replaced the LLM.
	Shortcut  greeting.Kind
	Practices []triggers.Result
	Topics    []triggers.TopicMatch
}

func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if in.UserID != "" && session.UserID != "" && in.UserID != session.UserID {
		return nil, domain.ErrUserMismatch
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_id", session.UserID,
	)
	log.Info("sending message", "chars", len(text))

	history, err := s.messageStore.GetMessagesBySession(ctx, session.ID, s.historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	userMsg := &domain.Message{
		ID:          domain.MessageID(s.newID()),
		SessionID:   session.ID,
		Author:      domain.RoleUser,
		Text:        text,
		CreatedAt:   s.now(),
		ContentType: "text",
	}
	if err := s.messageStore.AppendMessage(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	thread := append(history, userMsg)
	out := &SendMessageOutput{UserMessage: userMsg}

	reply, err := s.reply(ctx, session, thread, in, out)
	if err != nil {
		log.Error("failed to produce reply", "error", err)
		return nil, err
	}

	assistantMsg := &domain.Message{
		ID:          domain.MessageID(s.newID()),
		SessionID:   session.ID,
		Author:      domain.RoleAssistant,
		Text:        reply,
		CreatedAt:   s.now(),
		Tags:        replyTags(out),
		ContentType: "text",
	}
	if out.Shortcut != greeting.KindNone {
		assistantMsg.ContentType = string(out.Shortcut)
	}
	if err := s.messageStore.AppendMessage(ctx, assistantMsg); err != nil {
		log.Error("failed to append assistant message", "error", err)
		return nil, err
	}
	out.AssistantMessage = assistantMsg

	if session.Title == "" {
		session.Title = titleFrom(text)
	}
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("send message completed",
		"shortcut", out.Shortcut,
		"practices", len(out.Practices),
		"topics", len(out.Topics),
	)

	return out, nil
}

// reply answers from the greeting shortcut when it applies and from the
// LLM otherwise, filling the detection fields of out.
func (s *Service) reply(
	ctx context.Context,
	session *domain.Session,
	thread []*domain.Message,
	in SendMessageInput,
	out *SendMessageOutput,
) (string, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)

	if s.greeter != nil {
		res, err := s.greeter.Handle(ctx, greeting.PipelineParams{
			Messages:   toGreetingMessages(thread),
			UserID:     session.UserID,
			UserName:   in.UserName,
			ClientHour: in.ClientHour,
			ClientTZ:   in.ClientTZ,
		})
		if err != nil {
			// the LLM can still answer a greeting
			log.Warn("greeting pipeline failed", "error", err)
		}
		if res.Handled {
			out.Shortcut = res.Reply.Kind
			return res.Response, nil
		}
	}

	detected := s.Detect(triggers.Input{
		Text:             in.Text,
		OpennessLevel:    in.OpennessLevel,
		Intensity:        in.Intensity,
		MinutesAvailable: in.MinutesAvailable,
	}, s.threshold)
	out.Practices = detected.Practices
	out.Topics = detected.Topics

	system, err := s.assembler.BuildWithModules(ctx, detected.Modules())
	if err != nil {
		return "", fmt.Errorf("assembling prompt: %w", err)
	}

	text, err := s.llm.GenerateReply(ctx, domain.LLMRequest{
		SessionID:    session.ID,
		UserID:       session.UserID,
		UserName:     in.UserName,
		SystemPrompt: system,
		History:      thread,
	})
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyReply
	}
	return text, nil
}

// DetectOutput is the result of running the practice and topic detectors
// over one message.
type DetectOutput struct {
	Practices []triggers.Result     `json:"practices"`
	Topics    []triggers.TopicMatch `json:"topics"`
}

// Modules lists the files to inject: practices first, then topics.
func (d DetectOutput) Modules() []string {
	out := make([]string, 0, len(d.Practices)+len(d.Topics))
	for _, p := range d.Practices {
		out = append(out, p.Module)
	}
	for _, t := range d.Topics {
		out = append(out, t.Module)
	}
	return out
}

// Threshold is the practice threshold used by SendMessage.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Detect runs practice and topic detection without touching any session.
func (s *Service) Detect(in triggers.Input, threshold float64) DetectOutput {
	intensity := 0
	if in.Intensity != nil {
		intensity = *in.Intensity
	}
	return DetectOutput{
		Practices: s.detector.Detect(in, threshold),
		Topics:    s.detector.MatchTopics(in.Text, intensity),
	}
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"limit", limit,
	)

	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(ctx, sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	log.Info("fetched session timeline", "message_count", len(msgs))

	return session, msgs, nil
}

func (s *Service) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	return s.sessionStore.ListSessionsByUser(ctx, userID, limit)
}

func toGreetingMessages(thread []*domain.Message) []greeting.Message {
	out := make([]greeting.Message, 0, len(thread))
	for _, m := range thread {
		out = append(out, greeting.Message{Role: m.Author, Content: m.Text})
	}
	return out
}

func replyTags(out *SendMessageOutput) []string {
	var tags []string
	if out.Shortcut != greeting.KindNone {
		tags = append(tags, string(out.Shortcut))
	}
	for _, p := range out.Practices {
		tags = append(tags, string(p.PracticeID))
	}
	for _, t := range out.Topics {
		tags = append(tags, t.Tags...)
	}
	return tags
}

func titleFrom(text string) string {
	r := []rune(text)
	if len(r) <= titleMaxRunes {
		return text
	}
	return strings.TrimSpace(string(r[:titleMaxRunes])) + "…"
}
