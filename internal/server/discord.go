package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
	"github.com/vcnotifier/vc-notifier/internal/conf"
	"github.com/vcnotifier/vc-notifier/internal/infra/discord"
	"github.com/vcnotifier/vc-notifier/internal/service"
)

// Chat commands, without the prefix
const (
	CommandHelp       = "help"
	CommandWhoIsOn    = "whoison"
	CommandNotifyMe   = "notifyme"
	CommandUnnotify   = "unnotify"
	CommandNotifyList = "notifylist"
)

// Gateway is the part of the Discord client the server drives
type Gateway interface {
	OnVoiceState(handler discord.VoiceStateHandler)
	OnMessage(handler discord.MessageHandler)
	Start() error
	Stop()
	Reply(msg *discord.Message, content string) error
}

// DiscordServer binds gateway events to the presence service and answers chat commands
type DiscordServer struct {
	gateway     Gateway
	presenceSvc *service.PresenceService
	queryUC     *usecase.QueryUsecase
	subUC       *usecase.SubscriptionUsecase
	messages    *conf.MessagesConfig
	prefix      string

	// Message deduplication cache, gateway resumes may replay messages
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewDiscordServer creates a new Discord server
func NewDiscordServer(
	gateway Gateway,
	presenceSvc *service.PresenceService,
	queryUC *usecase.QueryUsecase,
	subUC *usecase.SubscriptionUsecase,
	messages *conf.MessagesConfig,
	prefix string,
) *DiscordServer {
	if messages == nil {
		messages = conf.DefaultMessagesConfig()
	}
	return &DiscordServer{
		gateway:     gateway,
		presenceSvc: presenceSvc,
		queryUC:     queryUC,
		subUC:       subUC,
		messages:    messages,
		prefix:      prefix,
		seenMsgs:    make(map[string]time.Time),
	}
}

// Start registers handlers and opens the gateway connection
func (s *DiscordServer) Start() error {
	s.gateway.OnVoiceState(s.handleVoiceState)
	s.gateway.OnMessage(s.handleMessage)
	return s.gateway.Start()
}

// Stop closes the gateway, then drains queued presence events
func (s *DiscordServer) Stop() {
	s.gateway.Stop()
	s.presenceSvc.Stop()
}

// handleVoiceState hands a voice-state update to its guild's lane
func (s *DiscordServer) handleVoiceState(update *discord.VoiceStateUpdate) {
	s.presenceSvc.Enqueue(ToDomainEvent(update))
}

// handleMessage answers chat commands
func (s *DiscordServer) handleMessage(msg *discord.Message) {
	if msg.IsBot {
		return
	}
	if !strings.HasPrefix(strings.TrimSpace(msg.Content), s.prefix) {
		return
	}

	if s.isMessageSeen(msg.ID) {
		fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.ID)
		return
	}
	s.markMessageSeen(msg.ID)

	reply, ok := s.HandleCommand(context.Background(), msg)
	if !ok {
		return
	}
	fmt.Printf("[Server] Command from %s in guild %s: %s\n", msg.Username, msg.GuildID, truncate(msg.Content, 50))

	if err := s.gateway.Reply(msg, reply); err != nil {
		fmt.Printf("[Server] Failed to send reply: %v\n", err)
	}
}

// HandleCommand runs a chat command and returns the reply.
// ok is false when the message is not a known command.
func (s *DiscordServer) HandleCommand(ctx context.Context, msg *discord.Message) (reply string, ok bool) {
	command, ok := s.parseCommand(msg.Content)
	if !ok {
		return "", false
	}

	cmds := s.messages.Commands
	switch command {
	case CommandHelp:
		return conf.FormatCommand(cmds.Help, s.prefix, msg.Username, nil), true

	case CommandWhoIsOn:
		return s.queryUC.WhoIsOn(), true

	case CommandNotifyMe, CommandUnnotify, CommandNotifyList:
		if msg.GuildID == "" {
			return conf.FormatCommand(cmds.GuildOnly, s.prefix, msg.Username, nil), true
		}
		return s.handleSubscription(ctx, command, msg), true

	default:
		return "", false
	}
}

func (s *DiscordServer) handleSubscription(ctx context.Context, command string, msg *discord.Message) string {
	cmds := s.messages.Commands
	format := func(template string, subs []string) string {
		return conf.FormatCommand(template, s.prefix, msg.Username, subs)
	}

	switch command {
	case CommandNotifyMe:
		added, err := s.subUC.Subscribe(ctx, msg.GuildID, msg.Username)
		if err != nil {
			return s.commandFailed(command, err)
		}
		if !added {
			return format(cmds.AlreadySubscribed, nil)
		}
		return format(cmds.Subscribed, nil)

	case CommandUnnotify:
		removed, err := s.subUC.Unsubscribe(ctx, msg.GuildID, msg.Username)
		if err != nil {
			return s.commandFailed(command, err)
		}
		if !removed {
			return format(cmds.NotSubscribed, nil)
		}
		return format(cmds.Unsubscribed, nil)

	default:
		subs, err := s.subUC.Subscribers(ctx, msg.GuildID)
		if err != nil {
			return s.commandFailed(command, err)
		}
		if len(subs) == 0 {
			return format(cmds.NoSubscribers, nil)
		}
		return format(cmds.SubscriberList, subs)
	}
}

func (s *DiscordServer) commandFailed(command string, err error) string {
	if errors.Is(err, domain.ErrInvalidUsername) {
		fmt.Printf("[Server] %s rejected: %v\n", command, err)
	} else {
		fmt.Printf("[Server] %s failed: %v\n", command, err)
	}
	return s.messages.Commands.Failed
}

// parseCommand extracts the lowercased command word after the prefix
func (s *DiscordServer) parseCommand(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, s.prefix) {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(content, s.prefix))
	if len(fields) == 0 {
		return "", false
	}
	return strings.ToLower(fields[0]), true
}

// ToDomainEvent wraps a gateway voice-state update into domain records
func ToDomainEvent(update *discord.VoiceStateUpdate) *domain.VoiceStateEvent {
	return &domain.VoiceStateEvent{
		ID:     update.ID,
		Before: toDomainState(update.Before),
		After:  toDomainState(update.After),
	}
}

func toDomainState(vs *discord.VoiceState) *domain.VoiceState {
	if vs == nil {
		return nil
	}
	name := vs.DisplayName
	if name == "" {
		name = vs.Username
	}
	if name == "" {
		name = vs.UserID
	}
	state := &domain.VoiceState{
		Community: domain.Community{ID: vs.GuildID, Name: vs.GuildName},
		Member:    domain.Member{ID: vs.UserID, Name: name, Username: vs.Username},
	}
	if vs.ChannelID != "" {
		state.Channel = &domain.Channel{ID: vs.ChannelID, Name: vs.ChannelName, CommunityID: vs.GuildID}
	}
	return state
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// isMessageSeen checks if a message has been processed
func (s *DiscordServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed
func (s *DiscordServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	s.seenMsgs[msgID] = time.Now()

	// Drop records older than 5 minutes
	cutoff := time.Now().Add(-5 * time.Minute)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}
