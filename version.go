package flowedit

// Version is the release of the flowedit module. Builds may override it with
// -ldflags "-X github.com/aretw0/flowedit.Version=...".
var Version = "0.4.0"
