package protocol

import "github.com/btcsuite/btclog"

// log is this package's subsystem logger. It is disabled until the
// caller installs a real backend via UseLogger.
var log = btclog.Disabled

// UseLogger installs logger as this package's subsystem logger.
func UseLogger(logger btclog.Logger) {
	log = logger
}
