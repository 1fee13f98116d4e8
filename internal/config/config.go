package config

import (
	"fmt"
	"os"
	"time"

	"arquiz-service/internal/game"
	"gopkg.in/yaml.v3"
)

// Save store drivers.
const (
	SavesMemory   = "memory"
	SavesRedis    = "redis"
	SavesPostgres = "postgres"
	SavesSQLite   = "sqlite"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Content struct {
		TTL     string `yaml:"ttl"`
		File    string `yaml:"file"`
		Default string `yaml:"default"`
	} `yaml:"content"`
	Saves struct {
		Driver string `yaml:"driver"`
	} `yaml:"saves"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
	Game Game `yaml:"game"`
}

// Game holds the tunable rules; durations are Go duration strings.
type Game struct {
	QuestionTime  string   `yaml:"questionTime"`
	TickInterval  string   `yaml:"tickInterval"`
	SectionSize   int      `yaml:"sectionSize"`
	Points        int      `yaml:"points"`
	TargetCap     int      `yaml:"targetCap"`
	AnswerDelay   string   `yaml:"answerDelay"`
	TargetDelay   string   `yaml:"targetDelay"`
	TimeoutDelay  string   `yaml:"timeoutDelay"`
	TutorialPages []string `yaml:"tutorialPages"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings that would break the game layout or point at a missing backend.
func (c Config) Validate() error {
	if c.Game.SectionSize < 0 {
		return fmt.Errorf("game.sectionSize must be positive, got %d", c.Game.SectionSize)
	}
	if c.Game.Points < 0 || c.Game.TargetCap < 0 {
		return fmt.Errorf("game.points and game.targetCap must not be negative")
	}
	for key, raw := range map[string]string{
		"game.questionTime": c.Game.QuestionTime,
		"game.tickInterval": c.Game.TickInterval,
		"game.answerDelay":  c.Game.AnswerDelay,
		"game.targetDelay":  c.Game.TargetDelay,
		"game.timeoutDelay": c.Game.TimeoutDelay,
		"redis.ttl":         c.Redis.TTL,
		"content.ttl":       c.Content.TTL,
	} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d < 0 {
			return fmt.Errorf("%s: invalid duration %q", key, raw)
		}
	}
	if q := TTLDuration(c.Game.QuestionTime, time.Minute); q < time.Second {
		return fmt.Errorf("game.questionTime must be at least 1s, got %s", q)
	}
	switch c.SavesDriver() {
	case SavesMemory:
	case SavesRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("saves.driver redis needs redis.addr")
		}
	case SavesPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("saves.driver postgres needs postgres.url")
		}
	case SavesSQLite:
	default:
		return fmt.Errorf("unknown saves.driver %q", c.Saves.Driver)
	}
	return nil
}

// SavesDriver returns the configured save store, memory when unset.
func (c Config) SavesDriver() string {
	if c.Saves.Driver == "" {
		return SavesMemory
	}
	return c.Saves.Driver
}

// DefaultContent is the content set a game uses when the client names none.
func (c Config) DefaultContent() string {
	if c.Content.Default == "" {
		return "default"
	}
	return c.Content.Default
}

// GameRules converts the game section into rules, filling unset values from game.DefaultRules.
func (c Config) GameRules() game.Rules {
	rules := game.DefaultRules()
	rules.QuestionTime = TTLDuration(c.Game.QuestionTime, rules.QuestionTime)
	rules.AnswerDelay = TTLDuration(c.Game.AnswerDelay, rules.AnswerDelay)
	rules.TargetDelay = TTLDuration(c.Game.TargetDelay, rules.TargetDelay)
	rules.TimeoutDelay = TTLDuration(c.Game.TimeoutDelay, rules.TimeoutDelay)
	if c.Game.SectionSize > 0 {
		rules.SectionSize = c.Game.SectionSize
	}
	if c.Game.Points > 0 {
		rules.Points = c.Game.Points
	}
	if c.Game.TargetCap > 0 {
		rules.TargetCap = c.Game.TargetCap
	}
	return rules
}

// TickInterval is how often the frame loop advances sessions.
func (c Config) TickInterval() time.Duration {
	return TTLDuration(c.Game.TickInterval, 100*time.Millisecond)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
