package api

import (
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth        *service.AuthService
	Session     *service.SessionService
	Category    *service.CategoryService
	Video       *service.VideoService
	Interaction *service.InteractionService
	Interest    *service.InterestService
	Feed        *service.FeedService
	Recommender *service.Recommender
}
