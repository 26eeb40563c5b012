package app

import "net/http"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string       // config directory, e.g. $HOME/.sealchat
	BackendURL string       // hosted backend base URL
	Scope      string       // directory scope the user publishes under
	Passphrase string       // protects identity keys at rest
	HTTP       *http.Client // optional; defaults to http.DefaultClient
}
