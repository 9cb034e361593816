package client

import (
	"github.com/mediajournal/mediajournal/internal/auth"
	"github.com/mediajournal/mediajournal/internal/model"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	Blog        = model.Blog
	Song        = model.Song
	MusicVideo  = model.MusicVideo
	Movie       = model.Movie
	Recipe      = model.Recipe
	Number      = model.Number
	Date        = model.Date
	Ingredients = model.Ingredients
	Kind        = model.Kind

	User      = model.User
	Identity  = auth.Identity
	TokenPair = auth.TokenPair
)

// Record is a stored item with its id, owner and creation time.
type Record[T any] = model.Record[T]

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registered struct {
	Msg string `json:"msg"`
	ID  string `json:"id"`
}
