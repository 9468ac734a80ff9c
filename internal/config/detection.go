package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/sagebudget/sage/internal/recur"
)

// Detection builds the detector thresholds, starting from the engine defaults
// and applying any overrides from the loaded config file. Unknown keys are
// ignored; invalid values surface later through Config.Validate.
func Detection() recur.Config {
	cfg := recur.DefaultConfig()

	if viper.IsSet("detection.min_occurrences") {
		cfg.MinOccurrences = viper.GetInt("detection.min_occurrences")
	}
	if viper.IsSet("detection.amount_tolerance") {
		cfg.AmountTolerance = viper.GetFloat64("detection.amount_tolerance")
	}
	if viper.IsSet("detection.variable_amount_cv") {
		cfg.VariableAmountCV = viper.GetFloat64("detection.variable_amount_cv")
	}
	if viper.IsSet("detection.max_interval_cv") {
		cfg.MaxIntervalCV = viper.GetFloat64("detection.max_interval_cv")
	}
	if viper.IsSet("detection.recency_multiplier") {
		cfg.RecencyMultiplier = viper.GetFloat64("detection.recency_multiplier")
	}

	return cfg
}

// Exclusions returns the merchant exclusion rules. Rules configured under
// detection.exclusions replace the built-in set entirely, so a user can both
// add rules and drop defaults they disagree with.
func Exclusions() ([]recur.ExclusionRule, error) {
	if !viper.IsSet("detection.exclusions") {
		return recur.DefaultExclusions(), nil
	}

	var rules []recur.ExclusionRule
	if err := viper.UnmarshalKey("detection.exclusions", &rules); err != nil {
		return nil, fmt.Errorf("failed to parse detection.exclusions: %w", err)
	}
	return rules, nil
}
