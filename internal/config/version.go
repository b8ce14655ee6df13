package config

// Version is the auditlens binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/auditlens/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
