// Package config loads and validates the simulation configuration. Built-in
// defaults are embedded; an optional YAML file overrides them. Every numeric
// tunable the simulation consumes lives here so tests can pin exact values.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config is the root configuration document.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	World     WorldConfig             `yaml:"world"`
	Collision CollisionConfig         `yaml:"collision"`
	Player    PlayerConfig            `yaml:"player"`
	Nav       NavConfig               `yaml:"navigation"`
	Director  DirectorConfig          `yaml:"director"`
	Zombies   map[string]ZombieConfig `yaml:"zombies"`
	Weapons   map[string]WeaponConfig `yaml:"weapons"`
	Pickups   PickupConfig            `yaml:"pickups"`
	Telemetry TelemetryConfig         `yaml:"telemetry"`
}

// ServerConfig tunes the HTTP surface and the tick loop.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	TickRate        int    `yaml:"tick_rate"`
	CatchupMaxTicks int    `yaml:"catchup_max_ticks"`
}

// WorldConfig describes map generation.
type WorldConfig struct {
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	Seed                string  `yaml:"seed"`
	ObstacleCount       int     `yaml:"obstacle_count"`
	ObstacleMinSize     float64 `yaml:"obstacle_min_size"`
	ObstacleMaxSize     float64 `yaml:"obstacle_max_size"`
	CircleObstacleCount int     `yaml:"circle_obstacle_count"`
	CircleMinRadius     float64 `yaml:"circle_min_radius"`
	CircleMaxRadius     float64 `yaml:"circle_max_radius"`
	SpawnMargin         float64 `yaml:"spawn_margin"`
	SpawnSafeRadius     float64 `yaml:"spawn_safe_radius"`
}

// CollisionConfig tunes the spatial hash grid and resolution pass.
type CollisionConfig struct {
	CellSize   float64 `yaml:"cell_size"`
	Epsilon    float64 `yaml:"epsilon"`
	Iterations int     `yaml:"iterations"`
}

// PlayerConfig describes the player entity the factory constructs.
type PlayerConfig struct {
	Radius    float64 `yaml:"radius"`
	MaxHealth float64 `yaml:"max_health"`
	MoveSpeed float64 `yaml:"move_speed"`
}

// NavConfig tunes the zombie state machine.
type NavConfig struct {
	StuckEpsilon      float64   `yaml:"stuck_epsilon"`
	StuckTicks        int       `yaml:"stuck_ticks"`
	ProbeDistance     float64   `yaml:"probe_distance"`
	ProbeTimeoutTicks int       `yaml:"probe_timeout_ticks"`
	ProbeAnglesDeg    []float64 `yaml:"probe_angles_deg"`
	AttackRange       float64   `yaml:"attack_range"`
	AttackCooldown    float64   `yaml:"attack_cooldown"`
}

// DirectorConfig tunes spawn scheduling and difficulty scaling.
type DirectorConfig struct {
	BaseCount             int     `yaml:"base_count"`
	RatePerSecond         float64 `yaml:"rate_per_second"`
	MaxCount              int     `yaml:"max_count"`
	InitialCount          int     `yaml:"initial_count"`
	SpawnIntervalInitial  float64 `yaml:"spawn_interval_initial"`
	SpawnIntervalMin      float64 `yaml:"spawn_interval_min"`
	IntervalDecreaseEvery float64 `yaml:"interval_decrease_every"`
	IntervalDecreaseBy    float64 `yaml:"interval_decrease_by"`
	SpawnRingMin          float64 `yaml:"spawn_ring_min"`
	SpawnRingMax          float64 `yaml:"spawn_ring_max"`
	MinPlayerDistance     float64 `yaml:"min_player_distance"`
	SpawnAttempts         int     `yaml:"spawn_attempts"`
	MinSpawnSpacing       float64 `yaml:"min_spawn_spacing"`
	Composition           []CompositionStage `yaml:"composition"`
}

// CompositionStage shifts the zombie type distribution once survival time
// crosses After seconds. Stages apply in order; the last crossed stage wins.
type CompositionStage struct {
	After   float64            `yaml:"after"`
	Weights map[string]float64 `yaml:"weights"`
}

// ZombieConfig describes one zombie archetype.
type ZombieConfig struct {
	Radius   float64 `yaml:"radius"`
	Health   float64 `yaml:"health"`
	SpeedMin float64 `yaml:"speed_min"`
	SpeedMax float64 `yaml:"speed_max"`
	Damage   float64 `yaml:"damage"`
	Score    int     `yaml:"score"`
}

// WeaponConfig describes one weapon the combat system can fire. A non-zero
// blast_radius makes the projectile explode on impact, damaging everything
// within the radius.
type WeaponConfig struct {
	Cooldown     float64 `yaml:"cooldown"`
	Damage       float64 `yaml:"damage"`
	Speed        float64 `yaml:"speed"`
	TTL          float64 `yaml:"ttl"`
	Pellets      int     `yaml:"pellets"`
	SpreadDeg    float64 `yaml:"spread_deg"`
	Radius       float64 `yaml:"radius"`
	MagazineSize int     `yaml:"magazine_size"`
	ReloadTime   float64 `yaml:"reload_time"`
	BlastRadius  float64 `yaml:"blast_radius"`
}

// PickupConfig tunes the periodic drops: the weighted kind table and the
// magnitude and duration of each timed boost.
type PickupConfig struct {
	Interval     float64            `yaml:"interval"`
	MaxLive      int                `yaml:"max_live"`
	Radius       float64            `yaml:"radius"`
	TTL          float64            `yaml:"ttl"`
	HealthAmount float64            `yaml:"health_amount"`
	Weights      map[string]float64 `yaml:"weights"`

	SpeedMultiplier       float64 `yaml:"speed_multiplier"`
	SpeedDuration         float64 `yaml:"speed_duration"`
	DamageMultiplier      float64 `yaml:"damage_multiplier"`
	DamageDuration        float64 `yaml:"damage_duration"`
	RegenPerSecond        float64 `yaml:"regen_per_second"`
	RegenDuration         float64 `yaml:"regen_duration"`
	InvincibilityDuration float64 `yaml:"invincibility_duration"`
	RapidFireMultiplier   float64 `yaml:"rapid_fire_multiplier"`
	RapidFireDuration     float64 `yaml:"rapid_fire_duration"`
	InfiniteAmmoDuration  float64 `yaml:"infinite_ammo_duration"`
}

// TelemetryConfig controls the per-tick stats collector.
type TelemetryConfig struct {
	OutputDir   string `yaml:"output_dir"`
	FlushEvery  int    `yaml:"flush_every"`
	SampleEvery int    `yaml:"sample_every"`
}

// Load parses the embedded defaults and overlays the optional file at path.
// An empty path keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults, validated.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err) // embedded defaults must always parse
	}
	return cfg
}

// Validate rejects configurations the simulation cannot run with. This is
// the startup-time hard failure for malformed collaborator input; nothing
// downstream re-checks these.
func (c *Config) Validate() error {
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %d", c.Server.TickRate)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.Collision.CellSize <= 0 {
		return fmt.Errorf("collision.cell_size must be positive, got %g", c.Collision.CellSize)
	}
	if largest := c.largestDiameter(); c.Collision.CellSize < largest {
		return fmt.Errorf("collision.cell_size %g is smaller than the largest entity diameter %g", c.Collision.CellSize, largest)
	}
	if c.Player.Radius <= 0 {
		return fmt.Errorf("player.radius must be positive, got %g", c.Player.Radius)
	}
	if c.Nav.StuckTicks <= 0 {
		return fmt.Errorf("navigation.stuck_ticks must be positive, got %d", c.Nav.StuckTicks)
	}
	if len(c.Nav.ProbeAnglesDeg) == 0 {
		return fmt.Errorf("navigation.probe_angles_deg must not be empty")
	}
	if c.Director.MaxCount < c.Director.BaseCount {
		return fmt.Errorf("director.max_count %d must be >= base_count %d", c.Director.MaxCount, c.Director.BaseCount)
	}
	if c.Director.RatePerSecond < 0 {
		return fmt.Errorf("director.rate_per_second must be non-negative, got %g", c.Director.RatePerSecond)
	}
	if c.Director.SpawnAttempts <= 0 {
		return fmt.Errorf("director.spawn_attempts must be positive, got %d", c.Director.SpawnAttempts)
	}
	for _, stage := range c.Director.Composition {
		for name, weight := range stage.Weights {
			if weight < 0 {
				return fmt.Errorf("director composition weight %s at t=%g is negative", name, stage.After)
			}
			if _, ok := c.Zombies[name]; !ok {
				return fmt.Errorf("director composition references unknown zombie archetype %q", name)
			}
		}
	}
	for name, w := range c.Weapons {
		if w.Pellets < 1 {
			return fmt.Errorf("weapon %s pellets must be at least 1, got %d", name, w.Pellets)
		}
		if w.Speed <= 0 {
			return fmt.Errorf("weapon %s speed must be positive, got %g", name, w.Speed)
		}
		if w.MagazineSize <= 0 {
			return fmt.Errorf("weapon %s magazine_size must be positive, got %d", name, w.MagazineSize)
		}
		if w.Radius <= 0 {
			return fmt.Errorf("weapon %s radius must be positive, got %g", name, w.Radius)
		}
		if w.TTL <= 0 {
			return fmt.Errorf("weapon %s ttl must be positive, got %g", name, w.TTL)
		}
		if w.Cooldown <= 0 {
			return fmt.Errorf("weapon %s cooldown must be positive, got %g", name, w.Cooldown)
		}
		if w.BlastRadius < 0 {
			return fmt.Errorf("weapon %s blast_radius must be non-negative, got %g", name, w.BlastRadius)
		}
	}
	for kind, weight := range c.Pickups.Weights {
		if !knownPickupKinds[kind] {
			return fmt.Errorf("pickups.weights references unknown kind %q", kind)
		}
		if weight < 0 {
			return fmt.Errorf("pickups.weights %s is negative", kind)
		}
	}
	for name, z := range c.Zombies {
		if z.Radius <= 0 {
			return fmt.Errorf("zombie %s radius must be positive, got %g", name, z.Radius)
		}
		if z.SpeedMax < z.SpeedMin {
			return fmt.Errorf("zombie %s speed_max %g < speed_min %g", name, z.SpeedMax, z.SpeedMin)
		}
	}
	return nil
}

// knownPickupKinds mirrors the entity pickup variants. Kept here so a typo in
// an override file fails at load instead of spawning a dead pickup.
var knownPickupKinds = map[string]bool{
	"health":        true,
	"ammo":          true,
	"weapon":        true,
	"speed":         true,
	"damage":        true,
	"regen":         true,
	"invincibility": true,
	"rapid_fire":    true,
}

// TickDuration returns the fixed simulation step in seconds.
func (c *Config) TickDuration() float64 {
	return 1.0 / float64(c.Server.TickRate)
}

func (c *Config) largestDiameter() float64 {
	largest := 2 * c.Player.Radius
	for _, z := range c.Zombies {
		if d := 2 * z.Radius; d > largest {
			largest = d
		}
	}
	return largest
}
