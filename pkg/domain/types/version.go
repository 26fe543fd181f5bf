package types

// Version is the application version, overwritten at build time via -ldflags
var Version = "dev"
