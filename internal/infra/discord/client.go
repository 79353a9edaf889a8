package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Intents required to track voice presence and answer commands
const Intents = discordgo.IntentGuilds |
	discordgo.IntentGuildVoiceStates |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent

// MaxMessageLength is the longest message content Discord accepts, in characters
const MaxMessageLength = 2000

// VoiceState is one half of a voice-state update, flattened from the gateway payload
type VoiceState struct {
	GuildID     string
	GuildName   string
	ChannelID   string // Empty when not connected
	ChannelName string
	UserID      string
	DisplayName string
	Username    string
}

// VoiceStateUpdate is a received voice-state change
type VoiceStateUpdate struct {
	ID     string // Assigned on receipt, for log correlation
	Before *VoiceState
	After  *VoiceState
}

// Message represents a received text message
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string
	AuthorID  string
	Username  string
	IsBot     bool
}

// Channel represents a guild channel
type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// Guild represents a guild
type Guild struct {
	ID   string
	Name string
}

// VoiceStateHandler is the callback for voice-state updates
type VoiceStateHandler func(update *VoiceStateUpdate)

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// Client is the Discord gateway and REST client
type Client struct {
	token   string
	session *discordgo.Session

	mu           sync.RWMutex
	onVoiceState VoiceStateHandler
	onMessage    MessageHandler
	botUserID    string
}

// NewClient creates a new Discord client
func NewClient(token string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	// Handlers must see events in gateway order
	session.SyncEvents = true
	session.State.TrackVoice = true
	session.State.TrackChannels = true

	c := &Client{token: token, session: session}
	session.AddHandler(c.handleReady)
	session.AddHandler(c.handleVoiceStateUpdate)
	session.AddHandler(c.handleMessageCreate)
	return c, nil
}

// OnVoiceState sets the voice-state handler
func (c *Client) OnVoiceState(handler VoiceStateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onVoiceState = handler
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = handler
}

// Start opens the gateway connection. An invalid token fails here.
func (c *Client) Start() error {
	fmt.Println("[Discord] Opening gateway connection...")
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection
func (c *Client) Stop() {
	if err := c.session.Close(); err != nil {
		fmt.Printf("[Discord] Close error: %v\n", err)
	}
}

// SendMessage sends a text message to a channel, split into several
// messages when longer than MaxMessageLength
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	for _, chunk := range splitContent(content, MaxMessageLength) {
		if _, err := c.session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send message to %s: %w", channelID, err)
		}
	}
	return nil
}

// CreateTextChannel creates a text channel in a guild
func (c *Client) CreateTextChannel(ctx context.Context, guildID, name, reason string) (*Channel, error) {
	ch, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildText,
	}, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return nil, fmt.Errorf("create channel in guild %s: %w", guildID, err)
	}
	return &Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
}

// GetChannel looks up a channel, preferring the local state cache.
// Returns nil, nil when the channel does not exist.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*Channel, error) {
	if ch, err := c.session.State.Channel(channelID); err == nil {
		return &Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
	}

	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel %s: %w", channelID, err)
	}
	return &Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
}

// GetGuild looks up a guild, preferring the local state cache.
// Returns nil, nil when the guild is unknown.
func (c *Client) GetGuild(ctx context.Context, guildID string) (*Guild, error) {
	if g, err := c.session.State.Guild(guildID); err == nil {
		return &Guild{ID: g.ID, Name: g.Name}, nil
	}

	g, err := c.session.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get guild %s: %w", guildID, err)
	}
	return &Guild{ID: g.ID, Name: g.Name}, nil
}

// Reply sends a reply to a received message
func (c *Client) Reply(msg *Message, content string) error {
	ref := &discordgo.MessageReference{MessageID: msg.ID, ChannelID: msg.ChannelID, GuildID: msg.GuildID}
	for i, chunk := range splitContent(content, MaxMessageLength) {
		var err error
		if i == 0 {
			_, err = c.session.ChannelMessageSendReply(msg.ChannelID, chunk, ref)
		} else {
			_, err = c.session.ChannelMessageSend(msg.ChannelID, chunk)
		}
		if err != nil {
			return fmt.Errorf("reply to %s: %w", msg.ID, err)
		}
	}
	return nil
}

func (c *Client) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		return
	}
	c.mu.Lock()
	c.botUserID = r.User.ID
	c.mu.Unlock()
	fmt.Printf("[Discord] Logged in as '%s' (guilds=%d)\n", r.User.String(), len(r.Guilds))
}

func (c *Client) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	c.mu.RLock()
	handler := c.onVoiceState
	c.mu.RUnlock()
	if handler == nil || v.VoiceState == nil {
		return
	}

	update := &VoiceStateUpdate{
		ID:    uuid.NewString(),
		After: c.flattenVoiceState(v.VoiceState, v.VoiceState),
	}
	if v.BeforeUpdate != nil {
		// The cached previous state rarely carries member details; reuse the current ones
		update.Before = c.flattenVoiceState(v.BeforeUpdate, v.VoiceState)
	}
	handler(update)
}

func (c *Client) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	c.mu.RLock()
	handler := c.onMessage
	botUserID := c.botUserID
	c.mu.RUnlock()
	if handler == nil || m.Message == nil || m.Author == nil {
		return
	}
	if m.Author.ID == botUserID {
		return
	}

	handler(&Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		AuthorID:  m.Author.ID,
		Username:  m.Author.Username,
		IsBot:     m.Author.Bot,
	})
}

// flattenVoiceState takes the channel from vs and member details from current
func (c *Client) flattenVoiceState(vs, current *discordgo.VoiceState) *VoiceState {
	out := &VoiceState{
		GuildID:   vs.GuildID,
		ChannelID: vs.ChannelID,
		UserID:    vs.UserID,
	}
	if out.GuildID == "" {
		out.GuildID = current.GuildID
	}
	if out.UserID == "" {
		out.UserID = current.UserID
	}

	if g, err := c.session.State.Guild(out.GuildID); err == nil {
		out.GuildName = g.Name
	}
	if out.ChannelID != "" {
		if ch, err := c.session.State.Channel(out.ChannelID); err == nil {
			out.ChannelName = ch.Name
		}
	}

	member := current.Member
	if member == nil || member.User == nil {
		if m, err := c.session.State.Member(out.GuildID, out.UserID); err == nil {
			member = m
		}
	}
	// Left empty when unknown; handlers run synchronously on the gateway
	if member != nil && member.User != nil {
		out.Username = member.User.Username
		out.DisplayName = memberDisplayName(member)
	}
	return out
}

func memberDisplayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// splitContent breaks content into chunks of at most limit characters,
// preferring to cut at a newline, then at a space
func splitContent(content string, limit int) []string {
	runes := []rune(content)
	if limit <= 0 || len(runes) <= limit {
		return []string{content}
	}

	var chunks []string
	for len(runes) > limit {
		cut, skip := limit, 0
		if i := lastIndexRune(runes[:limit+1], '\n'); i > 0 {
			cut, skip = i, 1
		} else if i := lastIndexRune(runes[:limit+1], ' '); i > 0 {
			cut, skip = i, 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut+skip:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
