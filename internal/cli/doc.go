// Package cli parses the autoindex command line into an app.Config.
package cli
