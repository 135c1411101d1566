// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects, repositories
// (defined in internal/store) and external platforms to verify memberships.
//
// Key components:
//
// 1. Service Interfaces:
//   - MembershipService verifies memberships by screenshot or linked YouTube
//     account and grants the matching Discord role
//   - The auth subpackage issues dashboard and OAuth state tokens
//   - The reconcile subpackage re-verifies stored memberships periodically
//
// 2. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Platform clients (OCR, YouTube, Discord) are consumed through small
//     interfaces declared here, next to their only consumer
//
// 3. Error Handling:
//   - Store sentinels are translated to service sentinels
//   - Unexpected errors are wrapped in MembershipServiceError
package service
