// Package api serves the memberguard dashboard API. Handlers translate HTTP
// requests into membership service calls and map service errors to status
// codes and safe messages; raw errors only reach the logs.
package api
