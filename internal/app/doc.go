// Package app contains the application logic of the autoindex tool. It
// defines the App struct, its configuration, and the build lifecycle,
// decoupled from any specific entrypoint like a CLI.
package app
