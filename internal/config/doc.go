// Package config assembles clipkeeper's runtime configuration.
//
// Sources are applied in order, later ones winning:
//  1. Built-in defaults (Config.LoadDefaults).
//  2. An optional JSON file named by -c/--config or CLIPKEEPER_CONFIG.
//  3. CLIPKEEPER_* environment variables.
//  4. Command-line flags that were set explicitly.
package config
