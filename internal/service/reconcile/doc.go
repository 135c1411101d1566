// Package reconcile re-verifies active memberships and revokes the roles of
// those that lapsed.
//
// Screenshot memberships lapse when their billing date passes. OAuth
// memberships are re-checked against YouTube through a dedicated job queue so
// the pass never exceeds the configured number of concurrent API calls.
package reconcile
