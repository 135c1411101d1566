package bot

import (
	"errors"

	"github.com/phrazzld/memberguard/internal/ocr"
	"github.com/phrazzld/memberguard/internal/platform/discord"
	"github.com/phrazzld/memberguard/internal/platform/youtube"
	"github.com/phrazzld/memberguard/internal/service"
)

// userMessage turns a verification error into a reply the user can act on.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errScreenshotTooLarge):
		return "That screenshot is too large. Crop it to the membership page and try again."
	case errors.Is(err, errNotAnImage):
		return "That attachment is not an image. Upload a PNG, JPEG or WebP screenshot."
	case errors.Is(err, service.ErrChannelNotFound), errors.Is(err, service.ErrInvalidInput):
		return "Pick a channel from the list."
	case errors.Is(err, service.ErrNotLinked):
		return "Link your YouTube account with /link first, or attach a screenshot."
	case errors.Is(err, youtube.ErrAuthorizationRevoked):
		return "Your YouTube authorization was revoked. Run /link again."
	case errors.Is(err, service.ErrNotMember):
		return "Your linked YouTube account is not a member of this channel."
	case errors.Is(err, ocr.ErrChannelNotMentioned):
		return "The screenshot does not show this channel's name."
	case errors.Is(err, ocr.ErrNoMembershipKeyword):
		return "The screenshot does not look like a membership page."
	case errors.Is(err, ocr.ErrNoBillingDate):
		return "The screenshot must show your next billing date."
	case errors.Is(err, ocr.ErrBillingDateInPast):
		return "The billing date in the screenshot has already passed."
	case errors.Is(err, service.ErrEvidenceRejected):
		return "The screenshot does not prove an active membership."
	case errors.Is(err, service.ErrRecognitionFailed):
		return "Could not read the screenshot right now. Try again in a few minutes."
	case errors.Is(err, discord.ErrMemberNotInGuild):
		return "You need to be in the server to receive the role."
	case errors.Is(err, service.ErrRoleGrantFailed):
		return "Your membership was verified but the role could not be given. Run the command again."
	default:
		return "Something went wrong. Try again later."
	}
}
