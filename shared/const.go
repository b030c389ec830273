package shared

const (
	UserID   = "user_id"
	PlayerID = "player_id"

	// Header carrying the guest identity when no bearer token is present.
	PlayerHeader = "X-Player-ID"

	CurrencyDiamond = "💎"
	CurrencyDollar  = "💵"
	CurrencyPound   = "💷"
	CurrencyEuro    = "💶"
	CurrencyYen     = "💴"

	TierLow     = "low"
	TierMedium  = "medium"
	TierHigh    = "high"
	TierDiamond = "diamond"

	MissionStatusActive    = "active"
	MissionStatusCompleted = "completed"
	MissionStatusFailed    = "failed"

	TransactionTypeChoice       = "choice"
	TransactionTypeCustomChoice = "custom_choice"
	TransactionTypeReward       = "mission_reward"

	DefaultNarrativeStyle = "Modern Espionage Thriller"
	DefaultMood           = "Action-packed and Suspenseful"
)

// CurrencyTiers maps a cost tier to the acceptable currency kinds and their
// fixed amounts. A generated choice is priced with one kind picked from its
// tier at random.
var CurrencyTiers = map[string]map[string]int{
	TierLow:     {CurrencyDollar: 5, CurrencyPound: 4, CurrencyEuro: 4, CurrencyYen: 50},
	TierMedium:  {CurrencyDollar: 15, CurrencyPound: 12, CurrencyEuro: 13, CurrencyYen: 150},
	TierHigh:    {CurrencyDollar: 25, CurrencyPound: 20, CurrencyEuro: 22, CurrencyYen: 250},
	TierDiamond: {CurrencyDiamond: 1},
}

// CostTiers is the positional fallback order when a generated choice carries
// an unrecognized risk level: first choice low, second medium, third high.
var CostTiers = []string{TierLow, TierMedium, TierHigh}

// DefaultBalances is the starting wallet for every new progress record.
var DefaultBalances = map[string]int{
	CurrencyDiamond: 50,
	CurrencyDollar:  50,
	CurrencyPound:   40,
	CurrencyEuro:    45,
	CurrencyYen:     500,
}
