// Package bootstrap runs a service through its lifecycle: typed config,
// logger, component registry, hooks and graceful shutdown.
//
// Startup order:
//
//  1. components registered before Run are started
//  2. OnStart hooks
//  3. OnConfigure callbacks, then any components they registered
//  4. ready check (logged, not fatal)
//  5. OnReady hooks and the startup summary
//
// Shutdown runs OnStop hooks and then stops components in reverse
// registration order.
package bootstrap
