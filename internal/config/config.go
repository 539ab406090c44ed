package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/grdflow/internal/pricing"
	"github.com/gyeh/grdflow/internal/refdata"
)

// Config holds all runtime configuration for a grdflow run.
type Config struct {
	DSN       string
	FilePath  string
	LogFormat string // "text" or "json"
	Role      string // acting role supplied by the operator (stands in for the auth adapter)
	BatchID   string

	// Sheets names the reference-workbook sheets for refload.
	Sheets refdata.SheetNames
	// PlanCodes restricts ingestion pricing to a subset of the supported
	// plan codes; empty means all.
	PlanCodes []string `yaml:"plan_codes"`
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Sheets    refdata.SheetNames `yaml:"sheets"`
	PlanCodes []string           `yaml:"plan_codes"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.Sheets != (refdata.SheetNames{}) {
		c.Sheets = yc.Sheets
	}
	c.PlanCodes = yc.PlanCodes
	return c.validatePlanCodes()
}

// validatePlanCodes checks that every entry is a supported plan code. If
// PlanCodes is empty, it defaults to all supported codes.
func (c *Config) validatePlanCodes() error {
	if len(c.PlanCodes) == 0 {
		c.PlanCodes = make([]string, len(pricing.AllPlanFormulas))
		for i, f := range pricing.AllPlanFormulas {
			c.PlanCodes[i] = f.PlanCode
		}
		return nil
	}
	for _, code := range c.PlanCodes {
		if _, ok := pricing.FormulaByPlan(code); !ok {
			return fmt.Errorf("unknown plan code %q in config", code)
		}
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
