package capability

import (
	"strings"
	"time"
)

const (
	defaultFeatureKey     = "autorizacion.capacidades"
	defaultSchemaTTL      = 15 * time.Minute
	defaultFreshTTL       = 5 * time.Minute
	defaultStaleTTL       = 30 * time.Minute
	defaultCacheSize      = 10000
	defaultBuildTimeout   = 5 * time.Second
	defaultOverrideReason = "actualizacion.permisosweb"
)

// Widening lets a granted key satisfy a finer required key.
// A required key ending in Suffix is also satisfied by the same key with
// Suffix swapped for Replacement, e.g. "cheques.ver_modulo" by "cheques.ver".
type Widening struct {
	Suffix      string `mapstructure:"suffix" toml:"suffix"`
	Replacement string `mapstructure:"replacement" toml:"replacement"`
}

// Apply returns the coarser key required satisfies, matched case-insensitively.
func (w Widening) Apply(required string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(required))
	suffix := strings.ToLower(w.Suffix)

	if suffix == "" || len(key) <= len(suffix) || !strings.HasSuffix(key, suffix) {
		return "", false
	}

	return key[:len(key)-len(suffix)] + strings.ToLower(w.Replacement), true
}

// Options tunes the capability subsystem.
type Options struct {
	// FeatureKey is the WConfiguracionEmpresa key switching fine grained permissions.
	FeatureKey string `mapstructure:"featureKey" toml:"featureKey"`
	// SchemaTTL bounds how long a discovered Schema is reused.
	SchemaTTL time.Duration `mapstructure:"schemaTTL" toml:"schemaTTL"`
	// FreshTTL is the lifetime of a cached snapshot.
	FreshTTL time.Duration `mapstructure:"freshTTL" toml:"freshTTL"`
	// StaleTTL is the lifetime of the mirror served when a rebuild fails.
	StaleTTL time.Duration `mapstructure:"staleTTL" toml:"staleTTL"`
	// CacheSize caps the entries of each in-process tier.
	CacheSize int `mapstructure:"cacheSize" toml:"cacheSize"`
	// BuildTimeout bounds a single snapshot rebuild.
	BuildTimeout time.Duration `mapstructure:"buildTimeout" toml:"buildTimeout"`
	// OverrideReason is written to WUsuarioPermiso.Motivo.
	OverrideReason string `mapstructure:"overrideReason" toml:"overrideReason"`
	// Widenings are evaluated in order by the Authorizer.
	Widenings []Widening `mapstructure:"widenings" toml:"widenings"`
}

// DefaultOptions returns the built in settings.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults fills every unset field.
func (o Options) WithDefaults() Options {
	if o.FeatureKey == "" {
		o.FeatureKey = defaultFeatureKey
	}
	if o.SchemaTTL <= 0 {
		o.SchemaTTL = defaultSchemaTTL
	}
	if o.FreshTTL <= 0 {
		o.FreshTTL = defaultFreshTTL
	}
	if o.StaleTTL <= 0 {
		o.StaleTTL = defaultStaleTTL
	}
	if o.CacheSize <= 0 {
		o.CacheSize = defaultCacheSize
	}
	if o.BuildTimeout <= 0 {
		o.BuildTimeout = defaultBuildTimeout
	}
	if o.OverrideReason == "" {
		o.OverrideReason = defaultOverrideReason
	}
	if o.Widenings == nil {
		o.Widenings = []Widening{{Suffix: ".ver_modulo", Replacement: ".ver"}}
	}

	return o
}
