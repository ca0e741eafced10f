package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/joshua-decoder/run-bundler/internal/utils"
)

func (a *app) initLogging(enable bool) (err error) {
	switch {
	case a.config.Log != "":
		a.debugLog, err = utils.NewJSONLogger(enable, a.config.Log)
	case enable:
		a.debugLog, err = utils.NewDebugLogger()
	default:
		a.debugLog = zap.NewNop()
	}
	if err != nil {
		return fmt.Errorf("could not create a new logger: %v", err)
	}
	return nil
}
