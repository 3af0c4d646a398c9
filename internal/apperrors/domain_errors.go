package apperrors

// Domain errors shared by repositories, engines and handlers.
var (
	ErrUsernameNotFound = Auth("Username not found")
	ErrMissingEmail     = Auth("No email on file for this account")
	ErrBadCredentials   = Auth("Invalid email or password")
	ErrUsernameTaken    = AlreadyExists("username is already taken")
	ErrEmailTaken       = AlreadyExists("an account with this email already exists")

	ErrUserNotFound         = NotFound("user not found")
	ErrPostNotFound         = NotFound("post not found")
	ErrRequestNotFound      = NotFound("request not found")
	ErrConversationNotFound = NotFound("conversation not found")

	ErrPostExpired      = InvalidState("this post has already expired")
	ErrOwnPostRequest   = Forbidden("you cannot request your own post")
	ErrDuplicateRequest = AlreadyExists("you have already sent a request for this post")
	ErrNotPostOwner     = Forbidden("only the post owner can moderate this request")
	ErrRequestSettled   = InvalidState("request has already been accepted or rejected")
	ErrNotParticipant   = Forbidden("not a conversation participant")

	ErrOTPMismatch = Validation("verification code is incorrect or expired")
)
