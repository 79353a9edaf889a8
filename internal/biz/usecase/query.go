package usecase

import (
	"fmt"
	"strings"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
)

// EmptyPresenceText is returned when no guild is tracked yet
const EmptyPresenceText = "Nobody is being tracked yet."

// QueryUsecase answers presence queries from a point-in-time copy of the store
type QueryUsecase struct {
	presenceRepo repo.PresenceRepo
}

// NewQueryUsecase creates a new query usecase
func NewQueryUsecase(presenceRepo repo.PresenceRepo) *QueryUsecase {
	return &QueryUsecase{presenceRepo: presenceRepo}
}

// Presence returns a copy of all tracked guilds and channels
func (uc *QueryUsecase) Presence() domain.PresenceView {
	return uc.presenceRepo.View()
}

// WhoIsOn formats every tracked channel with its occupants
func (uc *QueryUsecase) WhoIsOn() string {
	return FormatPresence(uc.presenceRepo.View())
}

// FormatPresence renders a presence view as the whoison reply
func FormatPresence(view domain.PresenceView) string {
	if view.Empty() {
		return EmptyPresenceText
	}

	var blocks []string
	for _, guild := range view.Communities {
		for _, channel := range guild.Channels {
			names := make([]string, 0, len(channel.Occupants))
			for _, m := range channel.Occupants {
				names = append(names, m.Name)
			}
			blocks = append(blocks, fmt.Sprintf("Channel '%s' on Server '%s' has: %s",
				channel.Name, guild.Name, strings.Join(names, ", ")))
		}
	}
	return strings.Join(blocks, "\n\n")
}
