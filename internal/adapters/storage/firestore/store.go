package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/eco-agent/internal/domain"
)

// Store persists sessions and their messages in Firestore. Messages live in
// a subcollection of their session document.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for projectID (ECO_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) messageDoc(sessionID domain.SessionID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(sessionID).Doc(string(msgID))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	SessionID   string    `firestore:"session_id"`
	Author      string    `firestore:"author"`
	Text        string    `firestore:"text"`
	CreatedAt   time.Time `firestore:"created_at"`
	Tags        []string  `firestore:"tags"`
	ContentType string    `firestore:"content_type"`
}

func (d sessionDoc) toDomain(id domain.SessionID) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    domain.UserID(d.UserID),
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		UserID:    string(session.UserID),
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}

	_, err := s.sessionDoc(session.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: session.Title},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return doc.toDomain(id), nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}

		out = append(out, doc.toDomain(domain.SessionID(snap.Ref.ID)))
	}
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		SessionID:   string(msg.SessionID),
		Author:      string(msg.Author),
		Text:        msg.Text,
		CreatedAt:   msg.CreatedAt,
		Tags:        msg.Tags,
		ContentType: msg.ContentType,
	}

	_, err := s.messageDoc(msg.SessionID, msg.ID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// GetMessagesBySession returns the last limit messages, oldest first.
func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(sessionID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:          domain.MessageID(snap.Ref.ID),
			SessionID:   sessionID,
			Author:      domain.ParseRole(doc.Author),
			Text:        doc.Text,
			CreatedAt:   doc.CreatedAt,
			Tags:        doc.Tags,
			ContentType: doc.ContentType,
		})
	}

	// queried newest first so the limit keeps the tail of the thread
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ─────────────────────────────────────────
// GreetGuard implementation
// ─────────────────────────────────────────

func (s *Store) greetCol() *firestore.CollectionRef {
	return s.client.Collection("greet_guard")
}

// GreetGuard marks greeted users in the greet_guard collection. Marks older
// than ttl are overwritten; ttl <= 0 keeps them forever.
type GreetGuard struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
}

func (s *Store) GreetGuard(ttl time.Duration) *GreetGuard {
	return &GreetGuard{store: s, ttl: ttl, now: time.Now}
}

type greetDoc struct {
	GreetedAt time.Time `firestore:"greeted_at"`
}

// Acquire reads and writes the user's mark inside one transaction.
func (g *GreetGuard) Acquire(ctx context.Context, userID domain.UserID) (bool, error) {
	if userID == "" {
		return true, nil
	}

	ref := g.store.greetCol().Doc(string(userID))
	allowed := false

	err := g.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		allowed = false
		now := g.now()

		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			var doc greetDoc
			if err := snap.DataTo(&doc); err != nil {
				return fmt.Errorf("decode greetDoc: %w", err)
			}
			if g.ttl <= 0 || now.Sub(doc.GreetedAt) < g.ttl {
				return nil
			}
		}

		allowed = true
		return tx.Set(ref, greetDoc{GreetedAt: now})
	})
	if err != nil {
		return false, fmt.Errorf("firestore GreetGuard: %w", err)
	}
	return allowed, nil
}
