package models

const (
	// MinStars / MaxStars bound a review's star rating.
	MinStars = 1
	MaxStars = 5

	// MaxSpotNameLen limits spot names.
	MaxSpotNameLen = 50

	// DefaultPage / DefaultPageSize apply when search omits paging.
	DefaultPage     = 1
	DefaultPageSize = 20

	// MaxPage / MaxPageSize cap search paging.
	MaxPage     = 10
	MaxPageSize = 20

	// DefaultSessionTTL время жизни сессии в Redis, в секундах.
	DefaultSessionTTL = 24 * 60 * 60
)
