// Package logging separates info output (stdout) from error output (stderr)
// so hosting platforms classify log lines correctly.
package logging

import (
	"fmt"
	"log"
	"os"
)

var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

// Info logs an informational message to stdout.
func Info(format string, v ...interface{}) {
	infoLogger.Println(fmt.Sprintf(format, v...))
}

// Error logs an error message to stderr.
func Error(format string, v ...interface{}) {
	errorLogger.Println(fmt.Sprintf(format, v...))
}

// Fatal logs an error to stderr and exits.
func Fatal(format string, v ...interface{}) {
	errorLogger.Fatalln(fmt.Sprintf(format, v...))
}
