package config

import (
	"errors"
	"fmt"
	"strings"

	"goalbridge/internal/app/translator"
)

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RateLimitPerMinute < 0 || c.Server.RateLimitBurst < 0 {
		errs = append(errs, errors.New("server rate limits must not be negative"))
	}
	if c.Engine.PoolSize <= 0 {
		errs = append(errs, errors.New("engine.pool_size must be positive"))
	}
	if c.Engine.AuditMaxAttempts <= 0 {
		errs = append(errs, errors.New("engine.audit_max_attempts must be positive"))
	}
	switch strings.ToLower(c.Observability.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.level %q is not one of debug, info, warn, error", c.Observability.Logging.Level))
	}
	errs = append(errs, validateHeuristics(c.Heuristics)...)
	return errors.Join(errs...)
}

func validateHeuristics(h translator.Heuristics) []error {
	var errs []error
	bands := map[string]translator.Band{
		"heuristics.eos.ideal_employees":        h.EOS.IdealEmployees,
		"heuristics.eos.ideal_teams":            h.EOS.IdealTeams,
		"heuristics.scaling_up.ideal_employees": h.ScalingUp.IdealEmployees,
	}
	for name, band := range bands {
		if band.Min < 0 || (band.Max != 0 && band.Max < band.Min) {
			errs = append(errs, fmt.Errorf("%s: min %d and max %d do not form a range", name, band.Min, band.Max))
		}
	}
	rates := map[string]float64{
		"heuristics.eos.min_completion_rate":        h.EOS.MinCompletionRate,
		"heuristics.okr.max_completion_rate":        h.OKR.MaxCompletionRate,
		"heuristics.four_dx.max_completion_rate":    h.FourDX.MaxCompletionRate,
		"heuristics.scaling_up.min_completion_rate": h.ScalingUp.MinCompletionRate,
	}
	for name, rate := range rates {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1", name))
		}
	}
	return errs
}
