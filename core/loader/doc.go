// Package loader registers HTTP features and mounts their routes.
//
// A feature reports its name, whether it is enabled and mounts its routes on a fiber.Router.
// Manager keeps features in registration order; LoadAll skips disabled ones and stops at
// the first feature that fails to load. The server registers "compare" and "integrity".
package loader
