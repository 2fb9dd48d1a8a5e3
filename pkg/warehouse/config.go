// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package warehouse

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	"github.com/LerianStudio/warehouse-pool/pkg/constant"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// EnvConfig is the raw warehouse configuration as read from the environment.
// Numeric and boolean settings stay strings so an unset variable can be told apart from zero.
type EnvConfig struct {
	EnvName    string `env:"ENV_NAME"`
	Production string `env:"WAREHOUSE_PRODUCTION"`

	Driver         string `env:"WAREHOUSE_DRIVER"`
	Account        string `env:"WAREHOUSE_ACCOUNT"`
	User           string `env:"WAREHOUSE_USER"`
	Role           string `env:"WAREHOUSE_ROLE"`
	Warehouse      string `env:"WAREHOUSE_WAREHOUSE"`
	Database       string `env:"WAREHOUSE_DATABASE"`
	Schema         string `env:"WAREHOUSE_SCHEMA"`
	PrivateKey     string `env:"WAREHOUSE_PRIVATE_KEY"`
	PrivateKeyPath string `env:"WAREHOUSE_PRIVATE_KEY_PATH"`

	PoolMax          string `env:"WAREHOUSE_POOL_MAX"`
	PoolWarmSize     string `env:"WAREHOUSE_POOL_WARM_SIZE"`
	AcquireTimeoutMs string `env:"WAREHOUSE_ACQUIRE_TIMEOUT_MS"`
	ExecuteTimeoutMs string `env:"WAREHOUSE_EXECUTE_TIMEOUT_MS"`
	InitTimeoutMs    string `env:"WAREHOUSE_INIT_TIMEOUT_MS"`
	WarmTimeoutMs    string `env:"WAREHOUSE_WARM_TIMEOUT_MS"`
	MaxRetries       string `env:"WAREHOUSE_MAX_RETRIES"`
	TotalRetryTimeMs string `env:"WAREHOUSE_TOTAL_RETRY_TIME_MS"`
	BaseBackoffMs    string `env:"WAREHOUSE_BASE_BACKOFF_MS"`
	MaxBackoffMs     string `env:"WAREHOUSE_MAX_BACKOFF_MS"`
	CircuitThreshold string `env:"WAREHOUSE_CB_THRESHOLD"`
	CircuitResetMs   string `env:"WAREHOUSE_CB_RESET_MS"`
	HealthIntervalMs string `env:"WAREHOUSE_HEALTH_INTERVAL_MS"`

	WarmEnabled string `env:"WAREHOUSE_WARM_ENABLED"`
	ForceWarm   string `env:"WAREHOUSE_FORCE_WARM"`
	Debug       string `env:"WAREHOUSE_DEBUG"`
	QueryTag    string `env:"WAREHOUSE_QUERY_TAG"`
	Timezone    string `env:"WAREHOUSE_TIMEZONE"`
}

// LoadEnvConfig reads the warehouse settings from environment variables.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to load warehouse config from env vars: %w", err)
	}

	return cfg, nil
}

// PoolConfiguration is the resolved and validated configuration.
// The setting tag carries the environment variable name used in validation messages.
type PoolConfiguration struct {
	Production bool

	Driver         string `setting:"WAREHOUSE_DRIVER" validate:"oneof=snowflake postgres"`
	Account        string `setting:"WAREHOUSE_ACCOUNT" validate:"required"`
	User           string `setting:"WAREHOUSE_USER" validate:"required"`
	Role           string `setting:"WAREHOUSE_ROLE" validate:"required_if=Driver snowflake"`
	Warehouse      string `setting:"WAREHOUSE_WAREHOUSE" validate:"required_if=Driver snowflake"`
	Database       string `setting:"WAREHOUSE_DATABASE" validate:"required"`
	Schema         string `setting:"WAREHOUSE_SCHEMA" validate:"required"`
	PrivateKey     string `setting:"WAREHOUSE_PRIVATE_KEY" validate:"required_without=PrivateKeyPath" json:"-"`
	PrivateKeyPath string `setting:"WAREHOUSE_PRIVATE_KEY_PATH" validate:"required_without=PrivateKey" json:"-"`

	MaxSize                 int `setting:"WAREHOUSE_POOL_MAX" validate:"gte=1,lte=50"`
	MinSize                 int
	WarmSize                int `setting:"WAREHOUSE_POOL_WARM_SIZE" validate:"gte=0,lte=20,ltefield=MaxSize"`
	AcquireTimeoutMs        int `setting:"WAREHOUSE_ACQUIRE_TIMEOUT_MS" validate:"gte=1000,lte=120000"`
	ExecuteTimeoutMs        int `setting:"WAREHOUSE_EXECUTE_TIMEOUT_MS" validate:"gte=1000,lte=600000"`
	InitTimeoutMs           int `setting:"WAREHOUSE_INIT_TIMEOUT_MS" validate:"gte=1000,lte=60000"`
	WarmTimeoutMs           int `setting:"WAREHOUSE_WARM_TIMEOUT_MS" validate:"gte=1000,lte=120000"`
	MaxRetries              int `setting:"WAREHOUSE_MAX_RETRIES" validate:"gte=0,lte=10"`
	TotalRetryTimeMs        int `setting:"WAREHOUSE_TOTAL_RETRY_TIME_MS" validate:"gte=1000,lte=900000"`
	BaseBackoffMs           int `setting:"WAREHOUSE_BASE_BACKOFF_MS" validate:"gte=50,lte=10000"`
	MaxBackoffMs            int `setting:"WAREHOUSE_MAX_BACKOFF_MS" validate:"gte=100,lte=60000,gtefield=BaseBackoffMs"`
	CircuitBreakerThreshold int `setting:"WAREHOUSE_CB_THRESHOLD" validate:"gte=1,lte=100"`
	CircuitBreakerResetMs   int `setting:"WAREHOUSE_CB_RESET_MS" validate:"gte=1000,lte=600000"`
	HealthCheckIntervalMs   int `setting:"WAREHOUSE_HEALTH_INTERVAL_MS" validate:"zeroorgte=5000,lte=600000"`

	WarmEnabled bool
	ForceWarm   bool
	Debug       bool
	QueryTag    string `setting:"WAREHOUSE_QUERY_TAG" validate:"max=64,printascii"`
	Timezone    string `setting:"WAREHOUSE_TIMEZONE" validate:"required"`
}

func (c *PoolConfiguration) AcquireTimeout() time.Duration { return millis(c.AcquireTimeoutMs) }
func (c *PoolConfiguration) ExecuteTimeout() time.Duration { return millis(c.ExecuteTimeoutMs) }
func (c *PoolConfiguration) InitTimeout() time.Duration { return millis(c.InitTimeoutMs) }
func (c *PoolConfiguration) WarmTimeout() time.Duration { return millis(c.WarmTimeoutMs) }
func (c *PoolConfiguration) TotalRetryTime() time.Duration { return millis(c.TotalRetryTimeMs) }
func (c *PoolConfiguration) BaseBackoff() time.Duration { return millis(c.BaseBackoffMs) }
func (c *PoolConfiguration) MaxBackoff() time.Duration { return millis(c.MaxBackoffMs) }
func (c *PoolConfiguration) CircuitReset() time.Duration { return millis(c.CircuitBreakerResetMs) }

// ShouldWarmOnCreate reports whether a background warm-up follows pool creation.
func (c *PoolConfiguration) ShouldWarmOnCreate() bool {
	return c.ForceWarm || c.WarmEnabled
}

// CredentialSource names where the secret comes from without revealing it.
func (c *PoolConfiguration) CredentialSource() string {
	if strings.TrimSpace(c.PrivateKey) != "" {
		return "inline"
	}

	return "file"
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

type modeDefaults struct {
	maxSize          int
	warmSize         int
	acquireMs        int
	executeMs        int
	initMs           int
	warmMs           int
	maxRetries       int
	totalRetryMs     int
	baseBackoffMs    int
	maxBackoffMs     int
	cbThreshold      int
	cbResetMs        int
	healthIntervalMs int
	warmEnabled      bool
}

func defaultsFor(production bool) modeDefaults {
	if production {
		return modeDefaults{
			maxSize: constant.ProdPoolMaxSize, warmSize: constant.ProdPoolWarmSize,
			acquireMs: constant.ProdAcquireTimeoutMs, executeMs: constant.ProdExecuteTimeoutMs,
			initMs: constant.ProdInitTimeoutMs, warmMs: constant.ProdWarmTimeoutMs,
			maxRetries: constant.ProdMaxRetries, totalRetryMs: constant.ProdTotalRetryTimeMs,
			baseBackoffMs: constant.ProdBaseBackoffMs, maxBackoffMs: constant.ProdMaxBackoffMs,
			cbThreshold: constant.ProdCircuitThreshold, cbResetMs: constant.ProdCircuitResetMs,
			healthIntervalMs: constant.ProdHealthCheckInterval, warmEnabled: constant.ProdWarmEnabled,
		}
	}

	return modeDefaults{
		maxSize: constant.DevPoolMaxSize, warmSize: constant.DevPoolWarmSize,
		acquireMs: constant.DevAcquireTimeoutMs, executeMs: constant.DevExecuteTimeoutMs,
		initMs: constant.DevInitTimeoutMs, warmMs: constant.DevWarmTimeoutMs,
		maxRetries: constant.DevMaxRetries, totalRetryMs: constant.DevTotalRetryTimeMs,
		baseBackoffMs: constant.DevBaseBackoffMs, maxBackoffMs: constant.DevMaxBackoffMs,
		cbThreshold: constant.DevCircuitThreshold, cbResetMs: constant.DevCircuitResetMs,
		healthIntervalMs: constant.DevHealthCheckInterval, warmEnabled: constant.DevWarmEnabled,
	}
}

// settingParser collects parse problems instead of stopping at the first one.
type settingParser struct {
	problems []string
}

func (p *settingParser) int(name, raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be an integer (got %q)", name, raw))
		return def
	}

	return v
}

func (p *settingParser) bool(name, raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.problems = append(p.problems, fmt.Sprintf("%s must be a boolean (got %q)", name, raw))
		return def
	}

	return v
}

func orDefault(raw, def string) string {
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}

	return def
}

// IsProduction reports whether production defaults apply.
func (e *EnvConfig) IsProduction() bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(e.Production)); err == nil {
		return v
	}

	return strings.EqualFold(strings.TrimSpace(e.EnvName), constant.ProductionEnvName)
}

// Resolve parses every setting, applies the defaults for the current mode and validates
// the result. Any problem yields a *ConfigurationError listing all of them.
func (e *EnvConfig) Resolve() (*PoolConfiguration, error) {
	production := e.IsProduction()
	d := defaultsFor(production)
	p := &settingParser{}

	cfg := &PoolConfiguration{
		Production:     production,
		Driver:         strings.ToLower(orDefault(e.Driver, constant.DefaultWarehouseDriver)),
		Account:        strings.TrimSpace(e.Account),
		User:           strings.TrimSpace(e.User),
		Role:           strings.TrimSpace(e.Role),
		Warehouse:      strings.TrimSpace(e.Warehouse),
		Database:       strings.TrimSpace(e.Database),
		Schema:         strings.TrimSpace(e.Schema),
		PrivateKey:     strings.TrimSpace(e.PrivateKey),
		PrivateKeyPath: strings.TrimSpace(e.PrivateKeyPath),

		MaxSize:                 p.int("WAREHOUSE_POOL_MAX", e.PoolMax, d.maxSize),
		WarmSize:                p.int("WAREHOUSE_POOL_WARM_SIZE", e.PoolWarmSize, d.warmSize),
		AcquireTimeoutMs:        p.int("WAREHOUSE_ACQUIRE_TIMEOUT_MS", e.AcquireTimeoutMs, d.acquireMs),
		ExecuteTimeoutMs:        p.int("WAREHOUSE_EXECUTE_TIMEOUT_MS", e.ExecuteTimeoutMs, d.executeMs),
		InitTimeoutMs:           p.int("WAREHOUSE_INIT_TIMEOUT_MS", e.InitTimeoutMs, d.initMs),
		WarmTimeoutMs:           p.int("WAREHOUSE_WARM_TIMEOUT_MS", e.WarmTimeoutMs, d.warmMs),
		MaxRetries:              p.int("WAREHOUSE_MAX_RETRIES", e.MaxRetries, d.maxRetries),
		TotalRetryTimeMs:        p.int("WAREHOUSE_TOTAL_RETRY_TIME_MS", e.TotalRetryTimeMs, d.totalRetryMs),
		BaseBackoffMs:           p.int("WAREHOUSE_BASE_BACKOFF_MS", e.BaseBackoffMs, d.baseBackoffMs),
		MaxBackoffMs:            p.int("WAREHOUSE_MAX_BACKOFF_MS", e.MaxBackoffMs, d.maxBackoffMs),
		CircuitBreakerThreshold: p.int("WAREHOUSE_CB_THRESHOLD", e.CircuitThreshold, d.cbThreshold),
		CircuitBreakerResetMs:   p.int("WAREHOUSE_CB_RESET_MS", e.CircuitResetMs, d.cbResetMs),
		HealthCheckIntervalMs:   p.int("WAREHOUSE_HEALTH_INTERVAL_MS", e.HealthIntervalMs, d.healthIntervalMs),

		WarmEnabled: p.bool("WAREHOUSE_WARM_ENABLED", e.WarmEnabled, d.warmEnabled),
		ForceWarm:   p.bool("WAREHOUSE_FORCE_WARM", e.ForceWarm, false),
		Debug:       p.bool("WAREHOUSE_DEBUG", e.Debug, false),
		QueryTag:    orDefault(e.QueryTag, constant.DefaultQueryTag),
		Timezone:    orDefault(e.Timezone, constant.DefaultSessionTimezone),
	}

	problems := append(p.problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, &ConfigurationError{Problems: problems}
	}

	return cfg, nil
}

var (
	validatorOnce  sync.Once
	configValidate *validator.Validate
	configTrans    ut.Translator
	settingNames   map[string]string
)

func configValidator() (*validator.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		locale := en.New()
		uni := ut.New(locale, locale)
		configTrans, _ = uni.GetTranslator("en")

		configValidate = validator.New(validator.WithRequiredStructEnabled())

		if err := enTranslations.RegisterDefaultTranslations(configValidate, configTrans); err != nil {
			panic(err)
		}

		settingNames = make(map[string]string)

		t := reflect.TypeOf(PoolConfiguration{})
		for i := 0; i < t.NumField(); i++ {
			if name := t.Field(i).Tag.Get("setting"); name != "" {
				settingNames[t.Field(i).Name] = name
			}
		}

		configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("setting"); name != "" {
				return name
			}

			return fld.Name
		})

		_ = configValidate.RegisterValidation("zeroorgte", validateZeroOrGte)

		registerTranslation("required", "{0} is required", false)
		registerTranslation("required_if", "{0} is required", false)
		registerTranslation("required_without", "{0} or {1} is required", true)
		registerTranslation("gtefield", "{0} must be greater than or equal to {1}", true)
		registerTranslation("ltefield", "{0} must be less than or equal to {1}", true)
		registerTranslation("zeroorgte", "{0} must be 0 (disabled) or {1} or greater", false)
	})

	return configValidate, configTrans
}

// registerTranslation adds a message; fieldParam maps a Go field name parameter onto its setting name.
func registerTranslation(tag, text string, fieldParam bool) {
	_ = configValidate.RegisterTranslation(tag, configTrans, func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}, func(trans ut.Translator, fe validator.FieldError) string {
		param := fe.Param()
		if fieldParam {
			if name, ok := settingNames[param]; ok {
				param = name
			}
		}

		if !strings.Contains(text, "{1}") {
			msg, _ := trans.T(tag, fe.Field())
			return msg
		}

		msg, _ := trans.T(tag, fe.Field(), param)

		return msg
	})
}

func validateZeroOrGte(fl validator.FieldLevel) bool {
	limit, err := strconv.ParseInt(fl.Param(), 10, 64)
	if err != nil {
		return false
	}

	v := fl.Field().Int()

	return v == 0 || v >= limit
}

func (c *PoolConfiguration) validate() []string {
	v, trans := configValidator()

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrs))

	for _, fe := range fieldErrs {
		msg := fe.Translate(trans)
		if isNumericTag(fe.Tag()) {
			msg = fmt.Sprintf("%s (got %v)", msg, fe.Value())
		}

		problems = append(problems, msg)
	}

	return problems
}

func isNumericTag(tag string) bool {
	switch tag {
	case "gte", "lte", "gtefield", "ltefield", "zeroorgte":
		return true
	default:
		return false
	}
}

// ConfigurationSummary is the non-secret view of the resolved configuration.
type ConfigurationSummary struct {
	Driver                  string `json:"driver"`
	Account                 string `json:"account"`
	User                    string `json:"user"`
	Role                    string `json:"role,omitempty"`
	Warehouse               string `json:"warehouse,omitempty"`
	Database                string `json:"database"`
	Schema                  string `json:"schema"`
	CredentialSource        string `json:"credentialSource"`
	Production              bool   `json:"production"`
	MaxSize                 int    `json:"maxSize"`
	MinSize                 int    `json:"minSize"`
	WarmSize                int    `json:"warmSize"`
	AcquireTimeoutMs        int    `json:"acquireTimeoutMs"`
	ExecuteTimeoutMs        int    `json:"executeTimeoutMs"`
	InitTimeoutMs           int    `json:"initTimeoutMs"`
	WarmTimeoutMs           int    `json:"warmTimeoutMs"`
	MaxRetries              int    `json:"maxRetries"`
	TotalRetryTimeMs        int    `json:"totalRetryTimeMs"`
	BaseBackoffMs           int    `json:"baseBackoffMs"`
	MaxBackoffMs            int    `json:"maxBackoffMs"`
	CircuitBreakerThreshold int    `json:"circuitBreakerThreshold"`
	CircuitBreakerResetMs   int    `json:"circuitBreakerResetMs"`
	HealthCheckIntervalMs   int    `json:"healthCheckIntervalMs"`
	WarmEnabled             bool   `json:"warmEnabled"`
	ForceWarm               bool   `json:"forceWarm"`
	Debug                   bool   `json:"debug"`
	QueryTag                string `json:"queryTag"`
	Timezone                string `json:"timezone"`
}

// Summary returns the configuration without credentials.
func (c *PoolConfiguration) Summary() ConfigurationSummary {
	return ConfigurationSummary{
		Driver:                  c.Driver,
		Account:                 c.Account,
		User:                    c.User,
		Role:                    c.Role,
		Warehouse:               c.Warehouse,
		Database:                c.Database,
		Schema:                  c.Schema,
		CredentialSource:        c.CredentialSource(),
		Production:              c.Production,
		MaxSize:                 c.MaxSize,
		MinSize:                 c.MinSize,
		WarmSize:                c.WarmSize,
		AcquireTimeoutMs:        c.AcquireTimeoutMs,
		ExecuteTimeoutMs:        c.ExecuteTimeoutMs,
		InitTimeoutMs:           c.InitTimeoutMs,
		WarmTimeoutMs:           c.WarmTimeoutMs,
		MaxRetries:              c.MaxRetries,
		TotalRetryTimeMs:        c.TotalRetryTimeMs,
		BaseBackoffMs:           c.BaseBackoffMs,
		MaxBackoffMs:            c.MaxBackoffMs,
		CircuitBreakerThreshold: c.CircuitBreakerThreshold,
		CircuitBreakerResetMs:   c.CircuitBreakerResetMs,
		HealthCheckIntervalMs:   c.HealthCheckIntervalMs,
		WarmEnabled:             c.WarmEnabled,
		ForceWarm:               c.ForceWarm,
		Debug:                   c.Debug,
		QueryTag:                c.QueryTag,
		Timezone:                c.Timezone,
	}
}
