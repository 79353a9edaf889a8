package server

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
	"github.com/vcnotifier/vc-notifier/internal/conf"
	"github.com/vcnotifier/vc-notifier/internal/data"
	"github.com/vcnotifier/vc-notifier/internal/infra/discord"
	"github.com/vcnotifier/vc-notifier/internal/service"
)

// Mock implementations

type mockGateway struct {
	mu           sync.Mutex
	onVoiceState discord.VoiceStateHandler
	onMessage    discord.MessageHandler
	started      bool
	stopped      bool
	replies      []string
}

func (m *mockGateway) OnVoiceState(handler discord.VoiceStateHandler) { m.onVoiceState = handler }
func (m *mockGateway) OnMessage(handler discord.MessageHandler)       { m.onMessage = handler }
func (m *mockGateway) Start() error                                   { m.started = true; return nil }
func (m *mockGateway) Stop()                                          { m.stopped = true }

func (m *mockGateway) Reply(msg *discord.Message, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return nil
}

type mockPlatformRepo struct {
	mu   sync.Mutex
	sent []string
}

func (m *mockPlatformRepo) SendText(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

func (m *mockPlatformRepo) CreateTextChannel(ctx context.Context, communityID, name, reason string) (*domain.Channel, error) {
	return &domain.Channel{ID: "notify-" + communityID, Name: name, CommunityID: communityID}, nil
}

func (m *mockPlatformRepo) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	return &domain.Channel{ID: channelID}, nil
}

func (m *mockPlatformRepo) Community(ctx context.Context, communityID string) (*domain.Community, error) {
	return &domain.Community{ID: communityID}, nil
}

// Helper functions

type testServer struct {
	server   *DiscordServer
	gateway  *mockGateway
	platform *mockPlatformRepo
	registry repo.RegistryRepo
	presence repo.PresenceRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	registry, err := data.NewRegistryRepo(data.MemoryDBPath)
	if err != nil {
		t.Fatalf("Failed to open registry: %v", err)
	}
	t.Cleanup(func() { registry.Close() })

	platform := &mockPlatformRepo{}
	presence := data.NewPresenceRepo()
	channelUC := usecase.NewChannelUsecase(platform, registry, usecase.DefaultChannelConfig())
	notifyUC := usecase.NewNotifyUsecase(channelUC, registry, platform)
	presenceSvc := service.NewPresenceService(presence, notifyUC, nil, service.PresenceConfig{})

	gateway := &mockGateway{}
	srv := NewDiscordServer(
		gateway,
		presenceSvc,
		usecase.NewQueryUsecase(presence),
		usecase.NewSubscriptionUsecase(registry),
		conf.DefaultMessagesConfig(),
		"!",
	)
	return &testServer{server: srv, gateway: gateway, platform: platform, registry: registry, presence: presence}
}

func command(guildID, username, content string) *discord.Message {
	return &discord.Message{
		ID:        username + content,
		ChannelID: "text-1",
		GuildID:   guildID,
		Content:   content,
		AuthorID:  "id-" + username,
		Username:  username,
	}
}

// Tests

func TestHandleCommand_NotACommand(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for _, content := range []string{"hello", "!", "!unknown", "whoison"} {
		if _, ok := ts.server.HandleCommand(ctx, command("g1", "alice", content)); ok {
			t.Errorf("Expected %q not to be handled", content)
		}
	}
}

func TestHandleCommand_WhoIsOnEmpty(t *testing.T) {
	ts := newTestServer(t)

	reply, ok := ts.server.HandleCommand(context.Background(), command("g1", "alice", "!whoison"))
	if !ok {
		t.Fatal("Expected whoison to be handled")
	}
	if reply != usecase.EmptyPresenceText {
		t.Errorf("Expected %q, got %q", usecase.EmptyPresenceText, reply)
	}
}

func TestHandleCommand_WhoIsOn(t *testing.T) {
	ts := newTestServer(t)
	ts.presence.UpdateDisplayName(domain.KindCommunity, "g1", "Friends")
	ts.presence.UpdateDisplayName(domain.KindChannel, "c1", "General")
	ts.presence.UpdateDisplayName(domain.KindMember, "u1", "Alice")
	ts.presence.AddOccupant("g1", "c1", "u1")

	reply, _ := ts.server.HandleCommand(context.Background(), command("g1", "bob", "  !WhoIsOn  "))

	expected := "Channel 'General' on Server 'Friends' has: Alice"
	if reply != expected {
		t.Errorf("Expected %q, got %q", expected, reply)
	}
}

func TestHandleCommand_SubscriptionFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	cmds := conf.DefaultMessagesConfig().Commands

	steps := []struct {
		username string
		content  string
		expected string
	}{
		{"alice", "!notifylist", cmds.NoSubscribers},
		{"alice", "!notifyme", conf.FormatCommand(cmds.Subscribed, "!", "alice", nil)},
		{"alice", "!notifyme", conf.FormatCommand(cmds.AlreadySubscribed, "!", "alice", nil)},
		{"bob", "!notifyme", conf.FormatCommand(cmds.Subscribed, "!", "bob", nil)},
		{"bob", "!notifylist", conf.FormatCommand(cmds.SubscriberList, "!", "bob", []string{"alice", "bob"})},
		{"alice", "!unnotify", conf.FormatCommand(cmds.Unsubscribed, "!", "alice", nil)},
		{"alice", "!unnotify", conf.FormatCommand(cmds.NotSubscribed, "!", "alice", nil)},
	}

	for i, step := range steps {
		reply, ok := ts.server.HandleCommand(ctx, command("g1", step.username, step.content))
		if !ok {
			t.Fatalf("Step %d: %q not handled", i, step.content)
		}
		if reply != step.expected {
			t.Errorf("Step %d: expected %q, got %q", i, step.expected, reply)
		}
	}

	subs, _ := ts.registry.Subscribers(ctx, "g1")
	if len(subs) != 1 || subs[0] != "bob" {
		t.Errorf("Expected [bob], got %v", subs)
	}
}

func TestHandleCommand_GuildOnly(t *testing.T) {
	ts := newTestServer(t)
	cmds := conf.DefaultMessagesConfig().Commands

	reply, ok := ts.server.HandleCommand(context.Background(), command("", "alice", "!notifyme"))
	if !ok {
		t.Fatal("Expected notifyme to be handled")
	}
	if reply != cmds.GuildOnly {
		t.Errorf("Expected %q, got %q", cmds.GuildOnly, reply)
	}
}

func TestHandleCommand_Help(t *testing.T) {
	ts := newTestServer(t)

	reply, _ := ts.server.HandleCommand(context.Background(), command("g1", "alice", "!help"))
	if !strings.Contains(reply, "!whoison") || !strings.Contains(reply, "!notifyme") {
		t.Errorf("Expected help to list commands, got %q", reply)
	}
}

func TestHandleMessage_RepliesOnceAndIgnoresBots(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.server.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !ts.gateway.started {
		t.Fatal("Expected gateway to be started")
	}

	msg := command("g1", "alice", "!whoison")
	ts.gateway.onMessage(msg)
	ts.gateway.onMessage(msg) // replayed

	bot := command("g1", "somebot", "!whoison")
	bot.IsBot = true
	ts.gateway.onMessage(bot)

	ts.gateway.onMessage(command("g1", "alice", "just chatting"))

	if len(ts.gateway.replies) != 1 {
		t.Errorf("Expected 1 reply, got %v", ts.gateway.replies)
	}
}

func TestHandleVoiceState_EnqueuesEvent(t *testing.T) {
	ts := newTestServer(t)
	if err := ts.server.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ts.gateway.onVoiceState(&discord.VoiceStateUpdate{
		ID: "evt-1",
		After: &discord.VoiceState{
			GuildID: "g1", GuildName: "Friends",
			ChannelID: "c1", ChannelName: "General",
			UserID: "u1", DisplayName: "Alice", Username: "alice",
		},
	})
	ts.server.Stop()

	if !ts.gateway.stopped {
		t.Error("Expected gateway to be stopped")
	}
	if ch, ok := ts.presence.Locate("g1", "u1"); !ok || ch != "c1" {
		t.Errorf("Expected u1 in c1, got %q (%v)", ch, ok)
	}
	if len(ts.platform.sent) != 1 || ts.platform.sent[0] != "'Alice' has joined voice chat 'General'." {
		t.Errorf("Unexpected notifications: %v", ts.platform.sent)
	}
}

func TestToDomainEvent(t *testing.T) {
	evt := ToDomainEvent(&discord.VoiceStateUpdate{
		ID: "evt-1",
		Before: &discord.VoiceState{
			GuildID: "g1", ChannelID: "c1", UserID: "u1", Username: "alice",
		},
		After: &discord.VoiceState{
			GuildID: "g1", UserID: "u1", Username: "alice",
		},
	})

	if evt.ID != "evt-1" || evt.CommunityID() != "g1" {
		t.Errorf("Unexpected event: %+v", evt)
	}
	if !evt.Before.IsActive() || evt.Before.Channel.ID != "c1" {
		t.Errorf("Expected active before state, got %+v", evt.Before)
	}
	if evt.After.IsActive() {
		t.Errorf("Expected inactive after state, got %+v", evt.After)
	}
	// Display name falls back to the username
	if evt.After.Member.Name != "alice" {
		t.Errorf("Expected name fallback to username, got %q", evt.After.Member.Name)
	}
}

func TestToDomainEvent_NilBefore(t *testing.T) {
	evt := ToDomainEvent(&discord.VoiceStateUpdate{
		ID:    "evt-1",
		After: &discord.VoiceState{GuildID: "g1", ChannelID: "c1", UserID: "u1"},
	})
	if evt.Before != nil {
		t.Errorf("Expected nil before, got %+v", evt.Before)
	}
}

func TestToDomainEvent_UnknownMemberUsesUserID(t *testing.T) {
	evt := ToDomainEvent(&discord.VoiceStateUpdate{
		ID:    "evt-1",
		After: &discord.VoiceState{GuildID: "g1", ChannelID: "c1", UserID: "u9"},
	})
	if evt.After.Member.Name != "u9" {
		t.Errorf("Expected name fallback to user ID, got %q", evt.After.Member.Name)
	}
	if evt.After.Member.Username != "" {
		t.Errorf("Expected empty username, got %q", evt.After.Member.Username)
	}
}
