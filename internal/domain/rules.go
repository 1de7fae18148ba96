package domain

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// knownConditions are the OpenWeatherMap condition groups a rule may
// reference. "Extreme" is a legacy group the live API no longer emits but
// archived observations still carry.
var knownConditions = map[string]bool{
	"Thunderstorm": true,
	"Drizzle":      true,
	"Rain":         true,
	"Snow":         true,
	"Mist":         true,
	"Smoke":        true,
	"Haze":         true,
	"Dust":         true,
	"Fog":          true,
	"Sand":         true,
	"Ash":          true,
	"Squall":       true,
	"Tornado":      true,
	"Clear":        true,
	"Clouds":       true,
	"Extreme":      true,
}

// AuxThresholds are the optional numeric checks a correlation rule applies
// beyond the condition sets.
type AuxThresholds struct {
	MinTempC       float64 `yaml:"min_temp_c" json:"min_temp_c"`
	MaxHumidityPct float64 `yaml:"max_humidity_pct" json:"max_humidity_pct"`
}

// DamageWeatherRule lists the weather condition groups that support or
// contradict one damage category.
type DamageWeatherRule struct {
	Supporting    []string       `yaml:"supporting" json:"supporting"`
	Contradicting []string       `yaml:"contradicting" json:"contradicting"`
	Aux           *AuxThresholds `yaml:"aux,omitempty" json:"aux,omitempty"`
}

func (r DamageWeatherRule) supports(condition string) bool {
	return slices.Contains(r.Supporting, condition)
}

func (r DamageWeatherRule) contradicts(condition string) bool {
	return slices.Contains(r.Contradicting, condition)
}

// RuleSet maps damage codes to correlation rules. A validated set has an
// entry for every code in the closed set plus a neutral default, so a
// lookup can never fail at scoring time.
type RuleSet struct {
	rules map[DamageCode]DamageWeatherRule
}

type ruleFile struct {
	Rules map[string]DamageWeatherRule `yaml:"rules"`
}

// LoadDefaultRules parses and validates the embedded correlation table.
func LoadDefaultRules() (RuleSet, error) {
	return parseRules(defaultRulesYAML)
}

// LoadRulesFile reads a rule table override from path. Overrides are held
// to the same completeness checks as the embedded table.
func LoadRulesFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules file: %w", err)
	}
	rs, err := parseRules(data)
	if err != nil {
		return RuleSet{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

func parseRules(data []byte) (RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}
	rs := RuleSet{rules: make(map[DamageCode]DamageWeatherRule, len(f.Rules))}
	for code, rule := range f.Rules {
		rs.rules[DamageCode(code)] = rule
	}
	if err := rs.validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// validate enforces the completeness the scorers assume. An incomplete or
// misspelled table is a deployment error and must fail startup, not surface
// mid-claim.
func (r RuleSet) validate() error {
	for code, rule := range r.rules {
		if !slices.Contains(DamageCodes, code) {
			return fmt.Errorf("rules: unknown damage code %q", code)
		}
		for _, c := range rule.Supporting {
			if !knownConditions[c] {
				return fmt.Errorf("rules: %s supporting lists unknown condition %q", code, c)
			}
		}
		for _, c := range rule.Contradicting {
			if !knownConditions[c] {
				return fmt.Errorf("rules: %s contradicting lists unknown condition %q", code, c)
			}
		}
	}
	for _, code := range DamageCodes {
		if _, ok := r.rules[code]; !ok {
			return fmt.Errorf("rules: missing entry for damage code %q", code)
		}
	}
	def := r.rules[DamageOther]
	if len(def.Supporting) != 0 || len(def.Contradicting) != 0 || def.Aux != nil {
		return fmt.Errorf("rules: default entry %q must stay neutral", DamageOther)
	}
	return nil
}

// Rule returns the correlation rule for code, falling back to the neutral
// default for anything outside the closed set.
func (r RuleSet) Rule(code DamageCode) DamageWeatherRule {
	if rule, ok := r.rules[code]; ok {
		return rule
	}
	return r.rules[DamageOther]
}

// Codes returns the damage codes the set carries rules for, sorted.
func (r RuleSet) Codes() []DamageCode {
	codes := make([]DamageCode, 0, len(r.rules))
	for code := range r.rules {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
