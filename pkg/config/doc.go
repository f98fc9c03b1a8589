// Package config loads archwatch settings with koanf.
//
// Layers are applied in order, later ones winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user file, config.toml or config.yaml in the config directory,
//     or the file given with --config
//  3. ARCHWATCH_ environment variables, with "__" separating sections
//     (ARCHWATCH_BACKUP__JOBS=4 sets backup.jobs)
//  4. overrides set by command line flags
package config
