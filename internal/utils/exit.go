package utils

import (
	"os"
	"sync"
)

type ExitFunc func()

var (
	exitFuncs   []ExitFunc
	exitFuncsMu sync.Mutex
)

// AddExitHandler registers f to run before the process exits through Exit.
// Each handler runs at most once.
func AddExitHandler(f ExitFunc) {
	exitFuncsMu.Lock()
	exitFuncs = append(exitFuncs, sync.OnceFunc(f))
	exitFuncsMu.Unlock()
}

func RunExitHandlers() {
	exitFuncsMu.Lock()
	funcs := exitFuncs
	exitFuncsMu.Unlock()
	// Last registered, first run.
	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}

func Exit(code int) {
	RunExitHandlers()
	os.Exit(code)
}
