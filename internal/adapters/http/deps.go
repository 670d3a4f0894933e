package http

import (
	"github.com/nats-io/nats.go"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/valkey"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Artworks *usecases.ArtworkService
	Likes    *usecases.LikeService
	Comments *usecases.CommentService
	Sessions *usecases.SessionService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
