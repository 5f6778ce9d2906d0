package domain

// SecurityKeywords is the relevance vocabulary used to filter and score
// chunks. Matching is case-insensitive substring matching.
var SecurityKeywords = []string{
	"shall",
	"must",
	"should",
	"required",
	"vulnerability",
	"threat",
	"risk",
	"perimeter",
	"access control",
	"surveillance",
	"camera",
	"alarm",
	"lockdown",
	"intrusion",
	"visitor",
	"emergency",
	"evacuation",
	"barrier",
	"fence",
	"lighting",
	"credential",
	"badge",
	"screening",
	"drill",
	"response",
	"security",
}

// ActionVerbs indicate a concrete, testable requirement in a clause.
var ActionVerbs = []string{
	"implement",
	"ensure",
	"maintain",
	"install",
	"establish",
	"conduct",
	"develop",
	"provide",
	"monitor",
	"restrict",
	"secure",
	"train",
	"review",
	"designate",
	"verify",
}
