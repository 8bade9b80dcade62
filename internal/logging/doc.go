// Package logging configures the process-wide slog logger: a console or
// JSON handler, an optional size-rotated log file, and small helpers for
// structured attributes and component-scoped loggers.
package logging
