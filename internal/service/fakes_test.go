package service

import (
	"context"
	"sync"
	"time"

	"github.com/botfactory/botfactory/internal/domain"
	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/conversation"
	"github.com/botfactory/botfactory/internal/domain/enduser"
	"github.com/botfactory/botfactory/internal/domain/knowledge"
	"github.com/botfactory/botfactory/internal/domain/update"
	"github.com/botfactory/botfactory/internal/port/events"
	"github.com/botfactory/botfactory/internal/port/messaging"
)

// memStore is an in-memory database.Store for service tests.
type memStore struct {
	mu      sync.Mutex
	bots    map[string]*bot.Bot
	users   map[string]*enduser.EndUser
	turns   []conversation.Turn
	entries []knowledge.Entry

	turnErr      error
	upsertErr    error
	knowledgeErr error

	knowledgeLoads int
	languageSets   []string
}

func newMemStore() *memStore {
	return &memStore{
		bots:  make(map[string]*bot.Bot),
		users: make(map[string]*enduser.EndUser),
	}
}

func userKey(botID, uid string) string { return botID + "|" + uid }

func (s *memStore) ListBots(ctx context.Context) ([]bot.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bot.Bot, 0, len(s.bots))
	for _, b := range s.bots {
		out = append(out, *b)
	}
	return out, nil
}

func (s *memStore) ListActiveBots(ctx context.Context) ([]bot.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bot.Bot
	for _, b := range s.bots {
		if b.Active {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memStore) GetBot(ctx context.Context, id string) (*bot.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) CreateBot(ctx context.Context, req bot.CreateRequest) (*bot.Bot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &bot.Bot{ID: "bot-" + req.Name, Name: req.Name, Token: req.Token, OwnerTier: req.OwnerTier}
	s.bots[b.ID] = b
	cp := *b
	return &cp, nil
}

func (s *memStore) SetBotActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Active = active
	return nil
}

func (s *memStore) DeleteBot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.bots, id)
	return nil
}

func (s *memStore) GetEndUser(ctx context.Context, botID, uid string) (*enduser.EndUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userKey(botID, uid)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpsertEndUser(ctx context.Context, u *enduser.EndUser) (*enduser.EndUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	key := userKey(u.BotID, u.PlatformUserID)
	if existing, ok := s.users[key]; ok {
		if u.Username != "" {
			existing.Username = u.Username
		}
		if u.FirstName != "" {
			existing.FirstName = u.FirstName
		}
		existing.MessageCount++
		existing.LastInteraction = time.Now()
		cp := *existing
		return &cp, nil
	}
	stored := *u
	stored.ID = "user-" + u.PlatformUserID
	if stored.FirstInteraction.IsZero() {
		stored.FirstInteraction = time.Now()
	}
	stored.MessageCount = 1
	s.users[key] = &stored
	cp := stored
	return &cp, nil
}

func (s *memStore) SetEndUserLanguage(ctx context.Context, botID, uid, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userKey(botID, uid)]
	if !ok {
		return domain.ErrNotFound
	}
	u.Language = lang
	s.languageSets = append(s.languageSets, lang)
	return nil
}

func (s *memStore) CreateTurn(ctx context.Context, t *conversation.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnErr != nil {
		return s.turnErr
	}
	t.ID = int64(len(s.turns) + 1)
	t.CreatedAt = time.Now()
	s.turns = append(s.turns, *t)
	return nil
}

func (s *memStore) RecentTurns(ctx context.Context, botID, uid string, limit int) ([]conversation.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []conversation.Turn
	for _, t := range s.turns {
		if t.BotID == botID && t.PlatformUserID == uid {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memStore) ListKnowledge(ctx context.Context, botID string) ([]knowledge.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.knowledgeLoads++
	if s.knowledgeErr != nil {
		return nil, s.knowledgeErr
	}
	var out []knowledge.Entry
	for _, e := range s.entries {
		if e.BotID == botID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) ListKnowledgeByKind(ctx context.Context, botID string, kind knowledge.Kind) ([]knowledge.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.knowledgeErr != nil {
		return nil, s.knowledgeErr
	}
	var out []knowledge.Entry
	for _, e := range s.entries {
		if e.BotID == botID && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

type sentText struct {
	chatID int64
	text   string
	kb     *messaging.Keyboard
}

type sentMedia struct {
	chatID   int64
	mediaRef string
	caption  string
}

// fakeClient records outbound platform calls and serves canned pulls.
type fakeClient struct {
	mu       sync.Mutex
	texts    []sentText
	targeted []string
	media    []sentMedia
	actions  []string
	answered []string

	sendErr     error
	validateErr error
	mediaURL    string
	mediaErr    error

	pull func(ctx context.Context, offset int64, wait time.Duration) ([]update.Raw, error)
}

func (c *fakeClient) Pull(ctx context.Context, offset int64, wait time.Duration) ([]update.Raw, error) {
	if c.pull != nil {
		return c.pull(ctx, offset, wait)
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeClient) SendText(ctx context.Context, chatID int64, text string, kb *messaging.Keyboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.texts = append(c.texts, sentText{chatID: chatID, text: text, kb: kb})
	return nil
}

func (c *fakeClient) SendTextTo(ctx context.Context, target, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targeted = append(c.targeted, target+": "+text)
	return nil
}

func (c *fakeClient) SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = append(c.media, sentMedia{chatID: chatID, mediaRef: mediaRef, caption: caption})
	return nil
}

func (c *fakeClient) SendChatAction(ctx context.Context, chatID int64, action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, action)
	return nil
}

func (c *fakeClient) AnswerCallback(ctx context.Context, callbackID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answered = append(c.answered, callbackID)
	return nil
}

func (c *fakeClient) MediaURL(ctx context.Context, fileID string) (string, error) {
	if c.mediaErr != nil {
		return "", c.mediaErr
	}
	if c.mediaURL != "" {
		return c.mediaURL, nil
	}
	return "https://files.example/" + fileID, nil
}

func (c *fakeClient) Validate(ctx context.Context) error { return c.validateErr }

func (c *fakeClient) sentTexts() []sentText {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentText(nil), c.texts...)
}

// fakeDialer hands out a per-token fakeClient when one is registered, and
// the shared default client otherwise.
type fakeDialer struct {
	client  *fakeClient
	byToken map[string]*fakeClient
}

func (d *fakeDialer) Dial(token string) messaging.Client {
	if c, ok := d.byToken[token]; ok {
		return c
	}
	return d.client
}

// fakeGenerator returns a canned reply and captures the last prompt.
type fakeGenerator struct {
	mu         sync.Mutex
	reply      string
	err        error
	lastPrompt string
	calls      int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

// fakeTranscriber returns a canned transcript.
type fakeTranscriber struct {
	text    string
	err     error
	lastURL string
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audioURL, language string) (string, error) {
	t.lastURL = audioURL
	if t.err != nil {
		return "", t.err
	}
	return t.text, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu      sync.Mutex
	replies []events.ReplyEvent
	states  []events.LifecycleEvent
}

func (p *fakePublisher) ReplySent(ctx context.Context, ev events.ReplyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, ev)
	return nil
}

func (p *fakePublisher) BotState(ctx context.Context, ev events.LifecycleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, ev)
	return nil
}

func (p *fakePublisher) stateNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.states))
	for i, ev := range p.states {
		out[i] = ev.State
	}
	return out
}

// memCache is a TTL-less map cache for context tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
