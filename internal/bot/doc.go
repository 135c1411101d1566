// Package bot serves the Discord side of memberguard: the /verify, /link and
// /unlink slash commands. Verification work is delegated to the membership
// service, so screenshots recognized here share the OCR queue with the API.
package bot
