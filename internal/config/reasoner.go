package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"gopkg.in/yaml.v3"
)

// ReasonerConfig mirrors reason.Params with YAML tags matching the spec's
// named environment variables, so a deployment can override any of them via
// either an env var or a YAML overlay file (teacher idiom: pkg/config's
// yaml-tagged structs, internal/config's getEnvOrDefault family).
type ReasonerConfig struct {
	ConceptBagSize            int     `json:"concept_bag_size" yaml:"concept_bag_size"`
	TaskLinkBagSize           int     `json:"task_link_bag_size" yaml:"task_link_bag_size"`
	ConceptBeliefsMax         int     `json:"concept_beliefs_max" yaml:"concept_beliefs_max"`
	ConceptForgetDurations    int64   `json:"concept_forget_durations" yaml:"concept_forget_durations"`
	TaskLinkForgetDurations   int64   `json:"tasklink_forget_durations" yaml:"tasklink_forget_durations"`
	NoveltyHorizon            int64   `json:"novelty_horizon" yaml:"novelty_horizon"`
	SequenceBagAttempts       int     `json:"sequence_bag_attempts" yaml:"sequence_bag_attempts"`
	TasksMaxFired             int     `json:"tasks_max_fired" yaml:"tasks_max_fired"`
	PremisesMaxFired          int     `json:"premises_max_fired" yaml:"premises_max_fired"`
	Duration                  int64   `json:"duration" yaml:"duration"`
	Volume                    int     `json:"volume" yaml:"volume"`
	QualityRescaled           float64 `json:"quality_rescaled" yaml:"quality_rescaled"`
	DefaultFeedbackPriority   float64 `json:"default_feedback_priority" yaml:"default_feedback_priority"`
	DefaultFeedbackDurability float64 `json:"default_feedback_durability" yaml:"default_feedback_durability"`
	OverflowCacheSize         int     `json:"overflow_cache_size" yaml:"overflow_cache_size"`
	ReasonerID                int     `json:"reasoner_id" yaml:"reasoner_id"`
}

// ToParams converts the loaded config into the reason.Params the core
// consumes, leaving ReasonerID to the caller (it seeds task.SerialIssuer,
// not Params).
func (c ReasonerConfig) ToParams() reason.Params {
	return reason.Params{
		ConceptBagSize:            c.ConceptBagSize,
		TaskLinkBagSize:           c.TaskLinkBagSize,
		ConceptBeliefsMax:         c.ConceptBeliefsMax,
		ConceptForgetDurations:    c.ConceptForgetDurations,
		TaskLinkForgetDurations:   c.TaskLinkForgetDurations,
		NoveltyHorizon:            c.NoveltyHorizon,
		SequenceBagAttempts:       c.SequenceBagAttempts,
		TasksMaxFired:             c.TasksMaxFired,
		PremisesMaxFired:          c.PremisesMaxFired,
		Duration:                  c.Duration,
		Volume:                    c.Volume,
		QualityRescaled:           c.QualityRescaled,
		DefaultFeedbackPriority:   c.DefaultFeedbackPriority,
		DefaultFeedbackDurability: c.DefaultFeedbackDurability,
		OverflowCacheSize:         c.OverflowCacheSize,
	}
}

// DefaultReasonerConfig mirrors reason.DefaultParams with env-var overrides,
// using the spec's own parameter names (spec §6) as the env var keys.
func DefaultReasonerConfig() ReasonerConfig {
	d := reason.DefaultParams()
	return ReasonerConfig{
		ConceptBagSize:            getEnvIntOrDefault("CONCEPT_BAG_SIZE", d.ConceptBagSize),
		TaskLinkBagSize:           getEnvIntOrDefault("TASK_LINK_BAG_SIZE", d.TaskLinkBagSize),
		ConceptBeliefsMax:         getEnvIntOrDefault("CONCEPT_BELIEFS_MAX", d.ConceptBeliefsMax),
		ConceptForgetDurations:    getEnvInt64OrDefault("CONCEPT_FORGET_DURATIONS", d.ConceptForgetDurations),
		TaskLinkForgetDurations:   getEnvInt64OrDefault("TASKLINK_FORGET_DURATIONS", d.TaskLinkForgetDurations),
		NoveltyHorizon:            getEnvInt64OrDefault("NOVELTY_HORIZON", d.NoveltyHorizon),
		SequenceBagAttempts:       getEnvIntOrDefault("SEQUENCE_BAG_ATTEMPTS", d.SequenceBagAttempts),
		TasksMaxFired:             getEnvIntOrDefault("TASKS_MAX_FIRED", d.TasksMaxFired),
		PremisesMaxFired:          getEnvIntOrDefault("PREMISES_MAX_FIRED", d.PremisesMaxFired),
		Duration:                  getEnvInt64OrDefault("DURATION", d.Duration),
		Volume:                    getEnvIntOrDefault("VOLUME", d.Volume),
		QualityRescaled:           getEnvFloatOrDefault("QUALITY_RESCALED", d.QualityRescaled),
		DefaultFeedbackPriority:   getEnvFloatOrDefault("DEFAULT_FEEDBACK_PRIORITY", d.DefaultFeedbackPriority),
		DefaultFeedbackDurability: getEnvFloatOrDefault("DEFAULT_FEEDBACK_DURABILITY", d.DefaultFeedbackDurability),
		OverflowCacheSize:         getEnvIntOrDefault("OVERFLOW_CACHE_SIZE", d.OverflowCacheSize),
		ReasonerID:                getEnvIntOrDefault("REASONER_ID", 1),
	}
}

// LoadYAMLOverlay reads path (if non-empty and present) and applies any
// fields it sets on top of c. A missing file is not an error — the overlay
// is optional, env vars and defaults already cover every field.
func LoadYAMLOverlay(c *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: reading overlay %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing overlay %s: %w", path, err)
	}
	return nil
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}
