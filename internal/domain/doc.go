// Package domain contains the entities of the membership verification
// service: YouTube channels configured per Discord guild, the memberships
// granted for them, and the YouTube accounts users have linked.
package domain
