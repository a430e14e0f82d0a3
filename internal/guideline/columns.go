package guideline

// Column names as they appear in the audit export header.
const (
	ColCitationCode         = "Citation Code: Platform-Specific"
	ColReviewTitle          = "Review Title"
	ColCaseStudy            = "Case Study Title"
	ColJudgement            = "Judgement"
	ColTitle                = "Title"
	ColTheme                = "Catalog Theme Title"
	ColTopic                = "Catalog Topic Title"
	ColImpact               = "Impact"
	ColEstimatedCost        = "Estimated Cost"
	ColImageURLs            = "Image URLs"
	ColGeminiURL            = "Gemini URL"
	ColScenarios            = "Scenarios"
	ColClientComment        = "Client-Facing Comment"
	ColInternalComment      = "Internal Comment"
	ColIssue                = "Issue"
	ColAdvice               = "Advice"
	ColMasterText           = "Master Text(s)"
	ColManualJudgement      = "Is Manual Judgement?"
	ColNudged               = "Is Nudged?"
	ColNeedsDiscussion      = "Needs Discussion?"
	ColImplementationURLs   = "implementation example urls"
	ColImplementationStatus = "Implementation Status"
	ColImportanceKey        = "Importance Key"
)

// RequiredColumns must all be present for an upload to be accepted.
var RequiredColumns = []string{
	ColCitationCode,
	ColReviewTitle,
	ColCaseStudy,
	ColJudgement,
	ColTitle,
}

// KeyColumns may not be empty on any row that enters a Dataset.
var KeyColumns = []string{ColCaseStudy, ColTitle, ColTheme}

// LowCost is the only Estimated Cost value the filters recognise. The
// comparison is exact; "Low" does not match.
const LowCost = "low"

// HighImpactThreshold is the minimum impact for the "high impact" query
// predicate.
const HighImpactThreshold = 4.0
