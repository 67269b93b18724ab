package resolver

// Status messages.
const (
	MessageExactMatch       = "Exact Match"
	MessageFuzzyMatch       = "Fuzzy Match"
	MessageFuzzyMatchFail   = "Fuzzy Match Fail"
	MessageMultipleMatches  = "Found multiple matches"
	MessageFollowedAccepted = "Followed Accepted Reference"
	MessageHardFail         = "Hard Fail Query"
	MessageTokenMissing     = "API token not present"
	MessageNotMatched       = "Not Matched"
)

// Audit trail labels.
const (
	LabelExactMatch     = "Exact Match"
	LabelExactMatchFail = "Exact Match Fail"
	LabelMultiMatch     = "Multi Match"
	LabelFuzzyMatch     = "Fuzzy Match"
	LabelFuzzyMatchFail = "Fuzzy Match Fail"
	LabelHardFail       = "Hard Fail Query"
	LabelCredentialFail = "Credential Fail"
	LabelRedirectSearch = "Redirect Search"
	LabelRedirectFail   = "Redirect Fail"
)
