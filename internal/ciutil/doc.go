// Package ciutil detects CI environments and resolves the database used by
// integration tests. Tests skip when no database is configured locally but
// fail in CI, where a missing database is a pipeline misconfiguration.
package ciutil
