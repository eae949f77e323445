// Package logging builds the [log/slog] handler used for cleanlogs' own
// diagnostics (invalid lines, formatter warnings, server events).
//
// Diagnostics are kept apart from the formatted log stream: the console sink
// writes to stdout, handlers built here normally write to stderr.
//
//	cfg := logging.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	logger := slog.New(handler)
package logging
