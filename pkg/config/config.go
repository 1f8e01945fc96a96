package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Engine struct {
		Weights struct {
			Form       float64 `yaml:"form"`
			H2H        float64 `yaml:"h2h"`
			Stats      float64 `yaml:"stats"`
			Standings  float64 `yaml:"standings"`
			Motivation float64 `yaml:"motivation"`
		} `yaml:"weights"`
		PoissonWeight          float64 `yaml:"poisson_weight"`
		MinConfidenceThreshold float64 `yaml:"min_confidence_threshold"`
		MinH2HMatches          int     `yaml:"min_h2h_matches"`
		LeagueAvgHomeGoals     float64 `yaml:"league_avg_home_goals"`
		LeagueAvgAwayGoals     float64 `yaml:"league_avg_away_goals"`
	} `yaml:"engine"`
	Value struct {
		MinValueThreshold   float64 `yaml:"min_value_threshold"`
		HighEdgeThreshold   float64 `yaml:"high_edge_threshold"`
		StrongEdgeThreshold float64 `yaml:"strong_edge_threshold"`
		MaxPlausibleEdge    float64 `yaml:"max_plausible_edge"`
		KellyFraction       float64 `yaml:"kelly_fraction"`
		MaxBetPercentage    float64 `yaml:"max_bet_percentage"`
		MaxSingleBet        float64 `yaml:"max_single_bet"`
	} `yaml:"value"`
	Bankroll struct {
		InitialBalance float64 `yaml:"initial_balance"`
		DailyStakeCap  float64 `yaml:"daily_stake_cap"`
		MaxOpenBets    int     `yaml:"max_open_bets"`
	} `yaml:"bankroll"`
	Live struct {
		PollInterval     time.Duration `yaml:"poll_interval"`
		DedupeCooldown   time.Duration `yaml:"dedupe_cooldown"`
		MinMinute        int           `yaml:"min_minute"`
		ShotPressureDiff int           `yaml:"shot_pressure_diff"`
		PossessionShare  float64       `yaml:"possession_share"`
		AggressionCards  int           `yaml:"aggression_cards"`
		CornerPressure   int           `yaml:"corner_pressure"`
		MomentumShots    int           `yaml:"momentum_shots"`
		GoalExpectancy   float64       `yaml:"goal_expectancy"`
	} `yaml:"live"`
	Batch struct {
		Concurrency int           `yaml:"concurrency"`
		BatchDelay  time.Duration `yaml:"batch_delay"`
		SourceRPS   float64       `yaml:"source_rps"`
	} `yaml:"batch"`
	Kafka struct {
		Brokers           []string `yaml:"brokers"`
		TicksTopic        string   `yaml:"ticks_topic"`
		OpportunityTopic  string   `yaml:"opportunity_topic"`
		RequiredAcks      int      `yaml:"required_acks"`
		Compression       string   `yaml:"compression"`
		ProducerBatchSize int      `yaml:"producer_batch_size"`
		Consumer          struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		AsyncInsert  bool          `yaml:"async_insert"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Feed struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Fixtures       []string      `yaml:"fixtures"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"feed"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	w := &c.Engine.Weights
	if w.Form == 0 && w.H2H == 0 && w.Stats == 0 && w.Standings == 0 && w.Motivation == 0 {
		w.Form, w.H2H, w.Stats, w.Standings, w.Motivation = 0.30, 0.20, 0.25, 0.15, 0.10
	}
	if c.Engine.PoissonWeight == 0 {
		c.Engine.PoissonWeight = 0.5
	}
	if c.Engine.MinConfidenceThreshold == 0 {
		c.Engine.MinConfidenceThreshold = 55
	}
	if c.Engine.MinH2HMatches == 0 {
		c.Engine.MinH2HMatches = 3
	}
	if c.Engine.LeagueAvgHomeGoals == 0 {
		c.Engine.LeagueAvgHomeGoals = 1.48
	}
	if c.Engine.LeagueAvgAwayGoals == 0 {
		c.Engine.LeagueAvgAwayGoals = 1.18
	}
	if c.Value.MinValueThreshold == 0 {
		c.Value.MinValueThreshold = 5
	}
	if c.Value.HighEdgeThreshold == 0 {
		c.Value.HighEdgeThreshold = 15
	}
	if c.Value.StrongEdgeThreshold == 0 {
		c.Value.StrongEdgeThreshold = 20
	}
	if c.Value.MaxPlausibleEdge == 0 {
		c.Value.MaxPlausibleEdge = 50
	}
	if c.Value.KellyFraction == 0 {
		c.Value.KellyFraction = 0.25
	}
	if c.Value.MaxBetPercentage == 0 {
		c.Value.MaxBetPercentage = 0.05
	}
	if c.Live.PollInterval == 0 {
		c.Live.PollInterval = 60 * time.Second
	}
	if c.Live.DedupeCooldown == 0 {
		c.Live.DedupeCooldown = 15 * time.Minute
	}
	if c.Live.MinMinute == 0 {
		c.Live.MinMinute = 15
	}
	if c.Live.ShotPressureDiff == 0 {
		c.Live.ShotPressureDiff = 4
	}
	if c.Live.PossessionShare == 0 {
		c.Live.PossessionShare = 0.58
	}
	if c.Live.AggressionCards == 0 {
		c.Live.AggressionCards = 3
	}
	if c.Live.CornerPressure == 0 {
		c.Live.CornerPressure = 6
	}
	if c.Live.MomentumShots == 0 {
		c.Live.MomentumShots = 3
	}
	if c.Live.GoalExpectancy == 0 {
		c.Live.GoalExpectancy = 1.4
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = 5
	}
	if c.Batch.BatchDelay == 0 {
		c.Batch.BatchDelay = 2 * time.Second
	}
	if c.Batch.SourceRPS == 0 {
		c.Batch.SourceRPS = 10
	}
}

// Validate checks if the configuration is valid. Malformed ensemble weights
// are rejected here, never per call.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	w := c.Engine.Weights
	for name, v := range map[string]float64{
		"form": w.Form, "h2h": w.H2H, "stats": w.Stats,
		"standings": w.Standings, "motivation": w.Motivation,
	} {
		if v < 0 {
			return fmt.Errorf("engine.weights.%s must be non-negative, got %v", name, v)
		}
	}
	sum := w.Form + w.H2H + w.Stats + w.Standings + w.Motivation
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("engine.weights must sum to 1, got %v", sum)
	}
	if c.Engine.PoissonWeight < 0 || c.Engine.PoissonWeight > 1 {
		return fmt.Errorf("engine.poisson_weight must be in [0,1], got %v", c.Engine.PoissonWeight)
	}
	if c.Value.KellyFraction <= 0 || c.Value.KellyFraction > 1 {
		return fmt.Errorf("value.kelly_fraction must be in (0,1], got %v", c.Value.KellyFraction)
	}
	if c.Value.MaxBetPercentage <= 0 || c.Value.MaxBetPercentage > 1 {
		return fmt.Errorf("value.max_bet_percentage must be in (0,1], got %v", c.Value.MaxBetPercentage)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be >= 1")
	}
	return nil
}
