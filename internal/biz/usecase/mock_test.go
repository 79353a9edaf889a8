package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
)

// Mock implementations

type sentMessage struct {
	ChannelID string
	Text      string
}

type mockPlatformRepo struct {
	mu        sync.Mutex
	guilds    map[string]*domain.Community
	channels  map[string]*domain.Channel
	sent      []sentMessage
	creates   int
	nextID    int
	sendErr   error
	createErr error
	// createHook runs inside CreateTextChannel, before the channel is returned
	createHook func()
}

func newMockPlatformRepo(guildIDs ...string) *mockPlatformRepo {
	m := &mockPlatformRepo{
		guilds:   make(map[string]*domain.Community),
		channels: make(map[string]*domain.Channel),
	}
	for _, id := range guildIDs {
		m.guilds[id] = &domain.Community{ID: id, Name: "Guild " + id}
	}
	return m
}

func (m *mockPlatformRepo) SendText(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Text: text})
	return nil
}

func (m *mockPlatformRepo) CreateTextChannel(ctx context.Context, communityID, name, reason string) (*domain.Channel, error) {
	if m.createHook != nil {
		m.createHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.creates++
	m.nextID++
	ch := &domain.Channel{ID: fmt.Sprintf("notify-%d", m.nextID), Name: name, CommunityID: communityID}
	m.channels[ch.ID] = ch
	return ch, nil
}

func (m *mockPlatformRepo) Channel(ctx context.Context, channelID string) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels[channelID], nil
}

func (m *mockPlatformRepo) Community(ctx context.Context, communityID string) (*domain.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guilds[communityID], nil
}

func (m *mockPlatformRepo) deleteChannel(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, channelID)
}

func (m *mockPlatformRepo) createCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

type mockRegistryRepo struct {
	mu          sync.Mutex
	subscribers map[string][]string
	channels    map[string]string
}

func newMockRegistryRepo() *mockRegistryRepo {
	return &mockRegistryRepo{
		subscribers: make(map[string][]string),
		channels:    make(map[string]string),
	}
}

func (m *mockRegistryRepo) AddSubscriber(ctx context.Context, communityID, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if domain.ContainsIdentifier(m.subscribers[communityID], username) {
		return false, nil
	}
	m.subscribers[communityID] = append(m.subscribers[communityID], username)
	return true, nil
}

func (m *mockRegistryRepo) RemoveSubscriber(ctx context.Context, communityID, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.subscribers[communityID]
	for i, s := range subs {
		if s == username {
			m.subscribers[communityID] = append(subs[:i:i], subs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRegistryRepo) Subscribers(ctx context.Context, communityID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.subscribers[communityID]...), nil
}

func (m *mockRegistryRepo) NotificationChannel(ctx context.Context, communityID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channels[communityID], nil
}

func (m *mockRegistryRepo) SetNotificationChannel(ctx context.Context, communityID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[communityID] = channelID
	return nil
}

func (m *mockRegistryRepo) Close() error {
	return nil
}
