package core

import "context"

// Module is one piece of the serve runtime: the HTTP engine, the actuator
// endpoints or the API. App configures modules in dependency order and
// starts them in the same order.
type Module interface {
	Name() string
	// DependsOn names the modules that must be configured first.
	DependsOn() []string
	// Configure reads what it needs from c and puts what it provides.
	Configure(c Container) error
	// Start launches long-running work. It must not block.
	Start(ctx context.Context, c Container) error
	// Stop releases what Start acquired; ctx bounds the shutdown.
	Stop(ctx context.Context, c Container) error
}
