// Package config loads cfgdiff's configuration from a cascade of sources with predictable precedence.
//
// A Loader starts from Defaults and applies registered sources from lowest to highest priority; later sources overwrite the fields they mention and leave the rest alone. The
// CLI registers, in order:
//   - the user config file (~/.cfgdiff/config.yaml or config.json; %LOCALAPPDATA% on Windows)
//   - the nearest .cfgdiff.yaml / .cfgdiff.json found walking up from the working directory
//   - a .env file in the working directory
//   - environment variables (CFGDIFF_*)
//
// and then applies command-line flags on top.
//
// Files: Files ending in .yaml or .yml are YAML; anything else is JSON, which may contain comments and trailing commas. Keys are matched case-insensitively. Unknown keys are
// ignored. Missing, unreadable, and empty files contribute nothing.
//
// Environment: Env values are strings coerced to the field's type: CFGDIFF_INDENT=4 sets an int, and list fields split on commas.
//
// Errors: Load fails fast on the first source that cannot be parsed or supplies a value of the wrong type, naming the source. Validate checks the semantic constraints on the
// merged result.
//
// Providence: Config.Sources records which source last set each key.
package config
