// Package chat is the conversational front end of the analyzer. It mirrors a
// messaging-bot flow: users upload a history document, then reply to it with
// /analyze [N]. Uploads are parked in a ports.UploadStore and deleted once the
// analysis that consumes them has run.
package chat

import (
	"bytes"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Commands understood by the bot. /analisis is kept as an alias of /analyze.
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandAnalyze  = "analyze"
	CommandAnalisis = "analisis"
)

// Document is a file attached to a message.
type Document struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"content"`
}

// Message is one inbound chat message: text, a document, or both.
// ReplyTo holds the upload ID of the message being replied to, if any.
type Message struct {
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	UserName string    `json:"user_name,omitempty"`
	Text     string    `json:"text,omitempty"`
	Document *Document `json:"document,omitempty"`
	ReplyTo  string    `json:"reply_to,omitempty"`
}

// Reply is what the bot sends back, in order.
type Reply struct {
	Messages []string `json:"messages"`
	UploadID string   `json:"upload_id,omitempty"`
}

// Options tunes upload handling.
type Options struct {
	MaxUploadBytes int64         // 0 = unlimited
	UploadTTL      time.Duration // 0 = uploads never expire
	DefaultTopN    int           // used when /analyze has no N; 0 = bbfs.DefaultTopN
}

// Bot handles chat messages. Safe for concurrent use as long as the store is.
type Bot struct {
	store ports.UploadStore
	log   *zap.Logger
	opts  Options

	now   func() time.Time
	newID func() string
}

// New creates a bot backed by store. A nil logger disables logging.
func New(store ports.UploadStore, log *zap.Logger, opts Options) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		store: store,
		log:   log,
		opts:  opts,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Handle processes one message and returns the reply. It never fails:
// internal errors are logged and turned into a generic apology. Unknown
// slash commands get an empty reply; plain text gets a hint.
func (b *Bot) Handle(m Message) Reply {
	if m.Document != nil {
		return b.handleDocument(m)
	}

	cmd, args, ok := parseCommand(m.Text)
	if !ok {
		return reply(msgUnknown)
	}

	switch cmd {
	case CommandStart:
		return reply(msgStart(m.UserName))
	case CommandHelp:
		return reply(msgHelp)
	case CommandAnalyze, CommandAnalisis:
		return b.handleAnalyze(m, args)
	default:
		b.log.Debug("ignored command", zap.String("command", cmd), zap.Int64("chat", m.ChatID))
		return Reply{}
	}
}

func (b *Bot) handleDocument(m Message) Reply {
	doc := m.Document
	if !IsPlainText(doc.Name, doc.MimeType) {
		b.log.Info("rejected upload", zap.Int64("chat", m.ChatID),
			zap.String("name", doc.Name), zap.String("mime", doc.MimeType))
		return reply(msgUnsupportedFormat)
	}
	if b.opts.MaxUploadBytes > 0 && int64(len(doc.Content)) > b.opts.MaxUploadBytes {
		b.log.Info("upload too large", zap.Int64("chat", m.ChatID), zap.Int("bytes", len(doc.Content)))
		return reply(msgTooLarge)
	}

	u := &ports.Upload{
		ID:        b.newID(),
		ChatID:    m.ChatID,
		UserID:    m.UserID,
		Name:      doc.Name,
		MimeType:  doc.MimeType,
		Content:   doc.Content,
		CreatedAt: b.now().Unix(),
	}
	if err := b.store.SaveUpload(u); err != nil {
		b.log.Error("save upload", zap.Error(err), zap.Int64("chat", m.ChatID))
		return reply(msgFailure)
	}

	b.log.Debug("upload stored", zap.String("id", u.ID), zap.Int("bytes", len(u.Content)))
	r := reply(msgReceived(u.ID))
	r.UploadID = u.ID
	return r
}

func (b *Bot) handleAnalyze(m Message, args []string) Reply {
	if m.ReplyTo == "" {
		return b.wrongUsage(m.ChatID)
	}

	u, err := b.store.LoadUpload(m.ReplyTo)
	if err != nil {
		b.log.Error("load upload", zap.Error(err), zap.String("id", m.ReplyTo))
		return reply(msgFailure)
	}
	if u == nil || u.ChatID != m.ChatID || b.expired(u) {
		return reply(msgUploadGone)
	}
	if !IsPlainText(u.Name, u.MimeType) {
		return reply(msgNotText)
	}

	topN := b.opts.DefaultTopN
	if topN <= 0 {
		topN = bbfs.DefaultTopN
	}
	if len(args) > 0 {
		topN = bbfs.ParseTopN(args[0])
	}

	history, err := bbfs.Load(bytes.NewReader(u.Content))
	if err != nil {
		// Unreadable upload: analyze as empty history.
		b.log.Warn("history unreadable", zap.Error(err), zap.String("id", u.ID))
		history = []string{}
	}

	start := b.now()
	report := bbfs.Analyze(history, topN)
	b.log.Info("analysis complete",
		zap.String("id", u.ID),
		zap.Int64("chat", m.ChatID),
		zap.Int("entries", len(history)),
		zap.Int("top_n", topN),
		zap.Duration("elapsed", b.now().Sub(start)))

	if err := b.store.DeleteUpload(u.ID); err != nil {
		b.log.Warn("delete upload", zap.Error(err), zap.String("id", u.ID))
	}

	return Reply{Messages: []string{msgProcessing, report}}
}

// wrongUsage warns about /analyze without a reply and, when the chat still
// has uploads waiting, lists their IDs so the user can reply to one.
func (b *Bot) wrongUsage(chatID int64) Reply {
	r := reply(msgWrongUsage)
	uploads, err := b.store.ListUploads(chatID)
	if err != nil {
		b.log.Warn("list uploads", zap.Error(err), zap.Int64("chat", chatID))
		return r
	}
	var ids []string
	for _, u := range uploads {
		if !b.expired(u) {
			ids = append(ids, u.ID)
		}
	}
	if len(ids) > 0 {
		r.Messages = append(r.Messages, msgPending(ids))
	}
	return r
}

func (b *Bot) expired(u *ports.Upload) bool {
	if b.opts.UploadTTL <= 0 {
		return false
	}
	return b.now().Sub(u.Created()) > b.opts.UploadTTL
}

// Prune removes uploads older than the configured TTL.
func (b *Bot) Prune() (int, error) {
	if b.opts.UploadTTL <= 0 {
		return 0, nil
	}
	n, err := b.store.PruneUploads(b.now().Add(-b.opts.UploadTTL))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		b.log.Info("pruned expired uploads", zap.Int("count", n))
	}
	return n, nil
}

// IsPlainText reports whether a document is a plain-text history file:
// mime type text/plain, or no mime type and a .txt name.
func IsPlainText(name, mimeType string) bool {
	if mimeType == "" {
		return strings.EqualFold(filepath.Ext(name), ".txt")
	}
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return mt == "text/plain"
}

// parseCommand splits "/analyze@bot 8" into ("analyze", ["8"]).
func parseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), fields[1:], true
}

func reply(text string) Reply {
	return Reply{Messages: []string{text}}
}
