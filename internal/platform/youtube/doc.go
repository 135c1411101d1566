// Package youtube links YouTube accounts through Google OAuth and checks
// channel membership with the YouTube Data API.
//
// Membership is proven by access: a members-only video's comment threads can
// only be listed by channel members, so a 403 from commentThreads.list means
// the account is not a member.
package youtube
