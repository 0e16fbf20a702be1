package greeting

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/PabloGalante/eco-agent/internal/domain"
	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

// bandVariantChance is how often a first contact uses a band-specific reply.
const bandVariantChance = 0.20

// Message is one turn of the thread as seen by the responder.
type Message struct {
	Role    domain.Role
	Content string
}

// ReplyOptions personalise the canned reply.
type ReplyOptions struct {
	UserName   string
	ClientHour *int   // 0–23, preferred over ClientTZ
	ClientTZ   string // IANA name, e.g. "America/Sao_Paulo"
}

// Reply is a canned answer plus what it was chosen from.
type Reply struct {
	Kind      Kind   `json:"kind"`
	Text      string `json:"text"`
	FirstTurn bool   `json:"first_turn"`
	Band      Band   `json:"band"`
	Tone      string `json:"tone"`
}

// Responder picks canned greeting and farewell replies.
type Responder struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

type ResponderOption func(*Responder)

// WithRand makes variant selection deterministic.
func WithRand(r *rand.Rand) ResponderOption {
	return func(rs *Responder) { rs.rnd = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ResponderOption {
	return func(rs *Responder) { rs.now = now }
}

func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond classifies the last message of msgs and returns the canned reply,
// or false when the message is neither a greeting nor a farewell.
func (r *Responder) Respond(msgs []Message, opts ReplyOptions) (Reply, bool) {
	if len(msgs) == 0 {
		return Reply{}, false
	}

	last := textnorm.Normalize(msgs[len(msgs)-1].Content)
	kind := classifyNormalized(last)
	if kind == KindNone {
		return Reply{}, false
	}

	band := BandForHour(clientHour(r.now(), opts.ClientHour, opts.ClientTZ))
	sd := band.Salutation()

	reply := Reply{Kind: kind, Band: band, Tone: band.Tone()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if kind == KindFarewell {
		reply.Text = farewellReplies[r.rnd.IntN(len(farewellReplies))](sd)
		return reply, true
	}

	nome := firstName(opts.UserName)
	reply.FirstTurn = isFirstUserTurn(msgs)

	if !reply.FirstTurn {
		reply.Text = repeatReplies[r.rnd.IntN(len(repeatReplies))](nome)
		return reply, true
	}

	if variants := bandReplies[band]; len(variants) > 0 && r.rnd.Float64() < bandVariantChance {
		reply.Text = variants[r.rnd.IntN(len(variants))](sd, nome)
		return reply, true
	}

	reply.Text = firstContactReplies[r.rnd.IntN(len(firstContactReplies))](sd, nome)
	return reply, true
}

// isFirstUserTurn treats a thread with at most one user message as a first
// contact. Threads without roles fall back to counting messages.
func isFirstUserTurn(msgs []Message) bool {
	hasRoles := false
	users := 0
	for _, m := range msgs {
		if m.Role != "" {
			hasRoles = true
		}
		if m.Role == domain.RoleUser {
			users++
		}
	}
	if hasRoles {
		return users <= 1
	}
	return len(msgs) <= 2
}
