// Package autoload configures the global logger from the LOG_* environment
// as a side effect of being imported.
package autoload

import (
	configx "github.com/shoptalk-ai/shoptalk/pkg/config"
	logx "github.com/shoptalk-ai/shoptalk/pkg/logger"
)

func init() {
	logx.Init(*configx.MustLoad[logx.Config]("LOG"))
}
