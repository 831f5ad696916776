package garnet

import (
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem loggers, one per functional area of the router pipeline.
// Each defaults to the disabled backend so importing this package is
// silent until the embedding application wires up real output via
// UseLogger/InitLoggers.
var (
	netLog    = btclog.Disabled
	routerLog = btclog.Disabled
	saLog     = btclog.Disabled
	spinLog   = btclog.Disabled
	xbarLog   = btclog.Disabled
)

// subsystems maps the short subsystem tag used in log lines to the
// logger variable backing it, so a host process can set per-subsystem
// levels the way btcd/lnd-style daemons do.
var subsystems = map[string]*btclog.Logger{
	"NTWK": &netLog,
	"ROUT": &routerLog,
	"SALC": &saLog,
	"SPIN": &spinLog,
	"XBAR": &xbarLog,
}

// InitLoggers attaches a concrete backend to every subsystem logger at
// the given level. Call this once, before constructing a GarnetNetwork,
// to get diagnostic output; the core never creates its own backend.
func InitLoggers(backend *btclog.Backend, level btclog.Level) {
	for tag, logger := range subsystems {
		l := backend.Logger(tag)
		l.SetLevel(level)
		*logger = l
	}
}

// UseLogger overrides a single subsystem's logger. Valid tags are the
// keys of subsystems ("NTWK", "ROUT", "SALC", "SPIN", "XBAR").
func UseLogger(subsystem string, logger btclog.Logger) {
	if ref, ok := subsystems[subsystem]; ok {
		*ref = logger
	}
}

// rolledLogWriter holds the process-wide rotator so it can be closed on
// shutdown; nil until InitLogRotator is called.
var rolledLogWriter *rotator.Rotator

// InitLogRotator creates a rolling log file at logFile, keeping maxRolls
// old copies, and returns an io.Writer suitable for btclog.NewBackend so
// a long-running simulation's diagnostic trace doesn't grow unbounded on
// disk. Pass the result (wrapped with os.Stdout via io.MultiWriter, if
// console output is also wanted) to btclog.NewBackend, and that backend
// to InitLoggers.
func InitLogRotator(logFile string, maxRolls int) (io.Writer, error) {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return nil, err
		}
	}
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return nil, err
	}
	rolledLogWriter = r
	return r, nil
}

// CloseLogRotator flushes and closes the rotator started by
// InitLogRotator, if any.
func CloseLogRotator() {
	if rolledLogWriter != nil {
		rolledLogWriter.Close()
		rolledLogWriter = nil
	}
}
