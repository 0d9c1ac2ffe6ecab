// Package logger provides structured logging for clientkit built on zerolog.
//
// Every component of the library accepts an injected *Logger rather than
// writing to a package-level global, so embedding applications (and tests)
// control where log output goes. Nop() returns a logger that discards
// everything.
package logger
