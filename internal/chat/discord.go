package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Handler receives translated chat events. Implemented by the session
// manager.
type Handler interface {
	// HandleFiles ingests the event's attachments.
	HandleFiles(ctx context.Context, ev *Event)
	// ClearSession tears down everything the session owns and returns a
	// user-visible confirmation.
	ClearSession(ctx context.Context, sessionID string) string
}

// clearCommands are the message prefixes that trigger a session reset.
var clearCommands = []string{"/clear_file", "/clean_file", "!clearfiles"}

// Discord translates Discord messages into chat events. Only messages
// carrying attachments and the clear commands are consumed; everything
// else belongs to the host bot.
type Discord struct {
	session *discordgo.Session
	handler Handler
	client  *http.Client
}

// NewDiscord creates the adapter with a bot token.
func NewDiscord(token string, handler Handler) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents |= discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	return &Discord{
		session: session,
		handler: handler,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Start connects to the Discord gateway.
func (d *Discord) Start(ctx context.Context) error {
	d.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		d.handleMessage(ctx, s, m)
	})
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	return nil
}

// Stop disconnects from the gateway.
func (d *Discord) Stop() error {
	return d.session.Close()
}

func (d *Discord) handleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ev := d.toEvent(s, m)

	text := strings.TrimSpace(m.Content)
	for _, cmd := range clearCommands {
		if strings.HasPrefix(text, cmd) {
			reply := d.handler.ClearSession(ctx, ev.SessionID)
			ev.Send(ctx, reply)
			return
		}
	}

	if len(ev.Attachments) > 0 {
		d.handler.HandleFiles(ctx, ev)
	}
}

// toEvent maps a Discord message onto the neutral event model. Session ids
// follow the "<platform>:<kind>:<origin>" convention so group sweeps can
// recover the group id from the session alone.
func (d *Discord) toEvent(s *discordgo.Session, m *discordgo.MessageCreate) *Event {
	msgType := DirectMessage
	groupID := ""
	origin := m.ChannelID
	if m.GuildID != "" {
		msgType = GroupMessage
		groupID = m.GuildID
		origin = m.GuildID
	}

	ev := &Event{
		SessionID: fmt.Sprintf("discord:%s:%s", msgType, origin),
		Type:      msgType,
		GroupID:   groupID,
		Text:      m.Content,
		Reply: func(_ context.Context, text string) error {
			_, err := s.ChannelMessageSend(m.ChannelID, text)
			return err
		},
	}

	for _, att := range m.Attachments {
		ev.Attachments = append(ev.Attachments, &discordAttachment{
			name:   att.Filename,
			url:    att.URL,
			client: d.client,
		})
	}
	return ev
}

// discordAttachment stages a Discord CDN attachment into a temp directory,
// preserving the original file name as the base name.
type discordAttachment struct {
	name   string
	url    string
	client *http.Client
}

func (a *discordAttachment) Name() string { return a.name }

func (a *discordAttachment) GetFile(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return "", fmt.Errorf("building attachment request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching attachment %s: %w", a.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching attachment %s: status %d", a.name, resp.StatusCode)
	}

	dir, err := os.MkdirTemp("", "filerag-upload-*")
	if err != nil {
		return "", fmt.Errorf("staging attachment: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(a.name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("staging attachment: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("writing attachment %s: %w", a.name, err)
	}
	return path, nil
}
