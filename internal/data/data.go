package data

import (
	"github.com/vcnotifier/vc-notifier/internal/biz/repo"
	"github.com/vcnotifier/vc-notifier/internal/infra/discord"
)

// Repositories contains all repositories
type Repositories struct {
	Presence repo.PresenceRepo
	Platform repo.PlatformRepo
	Registry repo.RegistryRepo
}

// NewRepositories creates all repositories
func NewRepositories(discordClient *discord.Client, registryDBPath string) (*Repositories, error) {
	registryRepo, err := NewRegistryRepo(registryDBPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Presence: NewPresenceRepo(),
		Platform: NewDiscordRepo(discordClient),
		Registry: registryRepo,
	}, nil
}

// Close releases repository resources
func (r *Repositories) Close() error {
	return r.Registry.Close()
}
