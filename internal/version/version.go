package version

// Version is the application version, overridable at build time with
// -ldflags "-X linkvid/internal/version.Version=...".
var Version = "0.2.0"
