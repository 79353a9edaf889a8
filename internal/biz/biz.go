package biz

import (
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Channel      *usecase.ChannelUsecase
	Notify       *usecase.NotifyUsecase
	Query        *usecase.QueryUsecase
	Subscription *usecase.SubscriptionUsecase
}
