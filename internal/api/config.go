package api

import (
	"github.com/vampire-games/vampired/internal/database"
)

type Config struct {
	// Logging all requests at debug level
	Debug bool `envconfig:"VAMPIRE_DEBUG" default:"false"`

	// Number of cached player sessions
	CacheSize int `envconfig:"VAMPIRE_CACHE_SIZE" default:"1024"`

	// Port for the game API and health check
	Port string `envconfig:"VAMPIRE_PORT" default:"1234"`

	// profile port
	ProfPort string `envconfig:"VAMPIRE_PROF_PORT" default:"8888"`

	// Default phase durations, seconds; games may override per create
	DiscussionTime int `envconfig:"VAMPIRE_DISCUSSION_TIME" default:"60"`
	VotingTime     int `envconfig:"VAMPIRE_VOTING_TIME" default:"60"`

	// Passcode hashing
	PasscodeIterations int    `envconfig:"VAMPIRE_PASSCODE_ITERATIONS" default:"100000"`
	PasscodePepper     string `envconfig:"VAMPIRE_PASSCODE_PEPPER"`

	Db database.Config
}
