// Package logger wraps zap with:
//   - a global sugared logger writing a console format to stdout,
//   - an optional rotated JSON log file (lumberjack) teed with the console,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and key-value convenience functions.
//
// Services accept a context and extract the logger from it, so every log
// line carries the component name and cycle fields attached upstream.
package logger
