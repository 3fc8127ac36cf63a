package di

import (
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
)

// provideClosingLogger hands the log files to wire's cleanup chain for
// short-lived commands that never reach App.Run.
func provideClosingLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}
