package redis_test

import "github.com/kbukum/clinic/logger"

func testLogger() *logger.Logger { return logger.Nop() }
