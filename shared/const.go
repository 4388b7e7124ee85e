package shared

const (
	UserID = "user_id"

	TokenCookie = "token"

	MaxHearts = 5

	DateLayout = "2006-01-02"

	ChallengeTypeSelect = "SELECT"
	ChallengeTypeAssist = "ASSIST"
	ChallengeTypeSound  = "SOUND"

	AnswerStatusCorrect     = "correct"
	AnswerStatusWrong       = "wrong"
	AnswerStatusOutOfHearts = "outOfHearts"

	ClaimStatusClaimed        = "claimed"
	ClaimStatusAlreadyClaimed = "already_claimed"

	PurchaseStatusPurchased    = "purchased"
	PurchaseStatusAlreadyOwned = "already_owned"

	RefillStatusRefilled    = "refilled"
	RefillStatusAlreadyFull = "already_full"
)
