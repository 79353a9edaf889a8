package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
	"github.com/vcnotifier/vc-notifier/internal/conf"
)

// PresenceConfig configures event processing
type PresenceConfig struct {
	PlatformTimeout time.Duration // Bound on each notification attempt
	BacklogWarn     int           // Log when a guild's queue grows past this
	Debug           bool
}

// PresenceService turns voice-state events into store updates and notifications.
// Events of one guild are processed one at a time in arrival order; guilds are
// independent and run on their own lanes.
type PresenceService struct {
	presenceRepo repo.PresenceRepo
	notifyUC     *usecase.NotifyUsecase
	messages     *conf.MessagesConfig
	config       PresenceConfig

	lanesMu sync.Mutex
	lanes   map[string]*guildLane
	stopped bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// guildLane is the sequential event queue of one guild
type guildLane struct {
	mu     sync.Mutex
	queue  []*domain.VoiceStateEvent
	closed bool
	wake   chan struct{}
}

// NewPresenceService creates a new presence service
func NewPresenceService(
	presenceRepo repo.PresenceRepo,
	notifyUC *usecase.NotifyUsecase,
	messages *conf.MessagesConfig,
	config PresenceConfig,
) *PresenceService {
	if messages == nil {
		messages = conf.DefaultMessagesConfig()
	}
	if config.PlatformTimeout <= 0 {
		config.PlatformTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &PresenceService{
		presenceRepo: presenceRepo,
		notifyUC:     notifyUC,
		messages:     messages,
		config:       config,
		lanes:        make(map[string]*guildLane),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Enqueue queues an event on its guild's lane
func (s *PresenceService) Enqueue(evt *domain.VoiceStateEvent) {
	guildID := evt.CommunityID()
	if guildID == "" {
		fmt.Printf("[Presence] Dropping event %s without guild\n", evt.ID)
		return
	}

	s.lanesMu.Lock()
	if s.stopped {
		s.lanesMu.Unlock()
		fmt.Printf("[Presence] Service stopped, dropping event %s\n", evt.ID)
		return
	}
	lane, ok := s.lanes[guildID]
	if !ok {
		lane = &guildLane{wake: make(chan struct{}, 1)}
		s.lanes[guildID] = lane
		s.wg.Add(1)
		go s.runLane(guildID, lane)
	}
	// Pushed under lanesMu so Stop cannot close the lane in between
	backlog, ok := lane.push(evt)
	s.lanesMu.Unlock()

	if !ok {
		fmt.Printf("[Presence] Guild %s lane closed, dropping event %s\n", guildID, evt.ID)
		return
	}
	if s.config.BacklogWarn > 0 && backlog > s.config.BacklogWarn {
		fmt.Printf("[Presence] Guild %s backlog at %d events\n", guildID, backlog)
	}
}

// Stop stops accepting events and waits for queued events to drain
func (s *PresenceService) Stop() {
	s.lanesMu.Lock()
	if s.stopped {
		s.lanesMu.Unlock()
		return
	}
	s.stopped = true
	for _, lane := range s.lanes {
		lane.close()
	}
	s.lanesMu.Unlock()

	s.wg.Wait()
	s.cancel()
}

func (s *PresenceService) runLane(guildID string, lane *guildLane) {
	defer s.wg.Done()
	for {
		evt, ok := lane.next(s.ctx)
		if !ok {
			return
		}
		s.HandleVoiceState(s.ctx, evt)
	}
}

// HandleVoiceState processes one event and dispatches notifications for the
// transitions it causes. Callers must not process events of the same guild
// concurrently.
func (s *PresenceService) HandleVoiceState(ctx context.Context, evt *domain.VoiceStateEvent) []domain.Transition {
	var transitions []domain.Transition
	if evt.After.IsActive() {
		transitions = s.applyActive(evt.After)
	} else {
		transitions = s.applyInactive(evt.Before)
	}

	if s.config.Debug {
		fmt.Printf("[Presence] Event %s: %d transition(s)\n", evt.ID, len(transitions))
	}

	for _, tr := range transitions {
		s.dispatch(ctx, evt.ID, tr)
	}
	return transitions
}

// applyActive handles a member that now occupies a voice channel
func (s *PresenceService) applyActive(state *domain.VoiceState) []domain.Transition {
	guildID := state.Community.ID
	channelID := state.Channel.ID
	memberID := state.Member.ID

	s.updateNames(state)

	origin, found := s.presenceRepo.Locate(guildID, memberID)
	moving := found && origin != channelID

	targetBefore := s.presenceRepo.Occupants(guildID, channelID)
	var originBefore domain.Snapshot
	if moving {
		originBefore = s.presenceRepo.Occupants(guildID, origin)
	}

	s.presenceRepo.AddOccupant(guildID, channelID, memberID)

	targetAfter := s.presenceRepo.Occupants(guildID, channelID)

	var transitions []domain.Transition
	if moving {
		originAfter := s.presenceRepo.Occupants(guildID, origin)
		if domain.HasLeft(memberID, originBefore, originAfter) {
			transitions = append(transitions, s.transition(domain.TransitionLeave, guildID, origin, state.Member))
		}
	}
	if domain.HasJoined(memberID, targetBefore, targetAfter) {
		transitions = append(transitions, s.transition(domain.TransitionJoin, guildID, channelID, state.Member))
	}
	return transitions
}

// applyInactive handles a member that no longer occupies any voice channel
func (s *PresenceService) applyInactive(state *domain.VoiceState) []domain.Transition {
	if !state.IsActive() {
		return nil
	}
	guildID := state.Community.ID
	channelID := state.Channel.ID
	memberID := state.Member.ID

	s.updateNames(state)

	before := s.presenceRepo.Occupants(guildID, channelID)
	s.presenceRepo.RemoveOccupant(guildID, channelID, memberID)
	after := s.presenceRepo.Occupants(guildID, channelID)

	if domain.HasLeft(memberID, before, after) {
		return []domain.Transition{s.transition(domain.TransitionLeave, guildID, channelID, state.Member)}
	}
	return nil
}

func (s *PresenceService) updateNames(state *domain.VoiceState) {
	if state.Community.Name != "" {
		s.presenceRepo.UpdateDisplayName(domain.KindCommunity, state.Community.ID, state.Community.Name)
	}
	if state.Channel != nil && state.Channel.Name != "" {
		s.presenceRepo.UpdateDisplayName(domain.KindChannel, state.Channel.ID, state.Channel.Name)
	}
	if state.Member.Name != "" {
		s.presenceRepo.UpdateDisplayName(domain.KindMember, state.Member.ID, state.Member.Name)
	}
}

func (s *PresenceService) transition(kind domain.TransitionKind, guildID, channelID string, member domain.Member) domain.Transition {
	return domain.Transition{
		Kind: kind,
		Community: domain.Community{
			ID:   guildID,
			Name: s.presenceRepo.DisplayName(domain.KindCommunity, guildID),
		},
		Channel: domain.Channel{
			ID:          channelID,
			Name:        s.presenceRepo.DisplayName(domain.KindChannel, channelID),
			CommunityID: guildID,
		},
		Member: domain.Member{
			ID:       member.ID,
			Name:     s.presenceRepo.DisplayName(domain.KindMember, member.ID),
			Username: member.Username,
		},
	}
}

// dispatch sends one notification; failures are logged and dropped
func (s *PresenceService) dispatch(ctx context.Context, eventID string, tr domain.Transition) {
	var message string
	switch tr.Kind {
	case domain.TransitionJoin:
		message = s.messages.FormatJoin(tr.Member.Name, tr.Channel.Name, tr.Community.Name)
	case domain.TransitionLeave:
		message = s.messages.FormatLeave(tr.Member.Name, tr.Channel.Name, tr.Community.Name)
	default:
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.PlatformTimeout)
	defer cancel()

	opts := domain.NotifyOptions{OmittedUsername: tr.Member.Username}
	if err := s.notifyUC.Notify(callCtx, tr.Community.ID, message, opts); err != nil {
		fmt.Printf("[Presence] Notify %s for event %s failed: %v\n", tr.Kind, eventID, err)
		return
	}
	fmt.Printf("[Presence] %s %s %s in guild %s\n", tr.Member.Name, tr.Kind, tr.Channel.Name, tr.Community.ID)
}

// push appends an event and returns the queue length; false once the lane is closed
func (l *guildLane) push(evt *domain.VoiceStateEvent) (int, bool) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return 0, false
	}
	l.queue = append(l.queue, evt)
	n := len(l.queue)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return n, true
}

// next blocks until an event is available; returns false once the lane is
// closed and drained, or ctx is done
func (l *guildLane) next(ctx context.Context) (*domain.VoiceStateEvent, bool) {
	for {
		l.mu.Lock()
		if len(l.queue) > 0 {
			evt := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()
			return evt, true
		}
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-l.wake:
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (l *guildLane) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}
