package uranai

// Version is overridden at build time with -ldflags "-X github.com/aretw0/uranai.Version=...".
var Version = "dev"
