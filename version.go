package banktalk

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/banktalk/banktalk.Version=...".
var Version = "0.1.0"
