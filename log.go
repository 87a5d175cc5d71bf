// Package waves wires together the confidential swap and covenant loan
// core: per-subsystem logging and the collaborator interfaces an
// embedding application supplies (coin selection, signing, broadcast,
// persistence). The core itself has no CLI, no network surface, and no
// configuration beyond what the embedder passes in directly.
package waves

import (
	"os"

	"github.com/btcsuite/btclog"
	"github.com/comit-network/waves/covenant"
	"github.com/comit-network/waves/protocol"
	"github.com/comit-network/waves/swap"
	"github.com/comit-network/waves/tx"
	"github.com/comit-network/waves/txbuilder"
)

// backendLog is the logging backend every subsystem logger below is
// spawned from. It writes to standard output; this package offers no way
// to point it at another writer.
var backendLog = btclog.NewBackend(os.Stdout)

// subsystemLoggers maps each subsystem's tag to the btclog.Logger wired
// into it, so SetLogLevel/SetLogLevels below can find it by name.
var subsystemLoggers = map[string]btclog.Logger{}

var (
	swpLog = addSubLogger("SWAP")
	cvnLog = addSubLogger("CVNT")
	txLog  = addSubLogger("TX  ")
)

func addSubLogger(tag string) btclog.Logger {
	logger := backendLog.Logger(tag)
	subsystemLoggers[tag] = logger
	return logger
}

// UseLoggers installs a real backend logger for every subpackage that
// exposes a UseLogger hook, the same per-subsystem wiring
// `chainregistry.go` performs for its own chain-control loggers. Until
// this is called every subsystem logs through btclog.Disabled.
func UseLoggers() {
	swap.UseLogger(swpLog)
	covenant.UseLogger(cvnLog)
	tx.UseLogger(txLog)
	txbuilder.UseLogger(txLog)
	protocol.UseLogger(txLog)
}

// SetLogLevel sets the log level for the logger associated with subsystemID
// to the passed level.
func SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		return
	}
	logger.SetLevel(level)
}

// SetLogLevels sets the log level for every registered subsystem logger.
func SetLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		SetLogLevel(subsystemID, logLevel)
	}
}
