package types

// AppName is used as the service identity in logs, health responses,
// and notification display names.
const AppName = "tagship"

// Version is overwritten at build time via -ldflags.
var Version = "dev"
