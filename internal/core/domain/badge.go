package domain

// Badge is a display tag for a verification state or a match score.
// Rendering layers consume it as-is; nothing in here touches markup.
type Badge struct {
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
}

// ResolveBadge maps a verification status to its badge.
// Unknown values resolve to a neutral tag rather than failing.
func ResolveBadge(status VerificationStatus) Badge {
	switch status {
	case VerificationVerified:
		return Badge{Label: "Verified", StyleClass: "success"}
	case VerificationRejected:
		return Badge{Label: "Rejected", StyleClass: "danger"}
	case VerificationPending:
		return Badge{Label: "Pending", StyleClass: "warning"}
	}
	return Badge{Label: "Unknown", StyleClass: "neutral"}
}

// ResolveScoreBadge maps an OCR match score (0-100) to its badge.
// A zero or absent score means the driver has never been processed.
func ResolveScoreBadge(score int) Badge {
	switch {
	case score >= 90:
		return Badge{Label: "excellent", StyleClass: "success"}
	case score >= 80:
		return Badge{Label: "good", StyleClass: "info"}
	case score >= 60:
		return Badge{Label: "fair", StyleClass: "warning"}
	case score >= 1:
		return Badge{Label: "poor", StyleClass: "danger"}
	}
	return Badge{Label: "unknown", StyleClass: "neutral"}
}
