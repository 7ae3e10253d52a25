package rewards

import "errors"

// Every failure below is an expected, caller-recoverable outcome. Anything
// else returned by this package is a persistence fault and should be treated
// as transient.
var (
	ErrTokenNotFound = errors.New("ad token not found")
	ErrTokenUsed     = errors.New("ad token already used")
	ErrTokenExpired  = errors.New("ad token expired")
	ErrDailyLimit    = errors.New("daily ad reward limit reached")

	ErrKeysNotReady       = errors.New("daily keys not ready")
	ErrInvalidKey         = errors.New("invalid key")
	ErrKey1AlreadyClaimed = errors.New("key1 already claimed")
	ErrKey2AlreadyClaimed = errors.New("key2 already claimed")

	ErrAlreadyCheckedIn = errors.New("already checked in")
)

var userMessages = map[error]string{
	ErrTokenNotFound:      "That reward link is not recognized.",
	ErrTokenUsed:          "This reward was already collected.",
	ErrTokenExpired:       "This reward link has expired, please request a new one.",
	ErrDailyLimit:         "You have reached today's ad reward limit. Come back after the reset.",
	ErrKeysNotReady:       "Today's keys are not ready yet, check back later.",
	ErrInvalidKey:         "That key is not valid.",
	ErrKey1AlreadyClaimed: "You have already redeemed today's first key.",
	ErrKey2AlreadyClaimed: "You have already redeemed today's second key.",
	ErrAlreadyCheckedIn:   "You have already checked in today.",
}

// UserMessage maps a recoverable outcome to its fixed user-facing message.
// Unknown errors get a generic line so internals never leak to chat.
func UserMessage(err error) string {
	for kind, msg := range userMessages {
		if errors.Is(err, kind) {
			return msg
		}
	}
	return "Something went wrong, please try again later."
}

// IsRecoverable reports whether err is one of the expected outcome kinds.
func IsRecoverable(err error) bool {
	for kind := range userMessages {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
