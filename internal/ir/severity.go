package ir

// Severity is the ordered severity enumeration: INFO < ERROR < LOW < MEDIUM
// < HIGH < CRITICAL. ERROR is a low-risk operational severity in this
// ordering — it constrains display/filter order only, never matching.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "INFO",
	SeverityError:    "ERROR",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if n, ok := severityNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseSeverity maps a rule's textual severity to the ordered enum. Unknown
// values are a RuleCompile error at the caller, not handled here.
func ParseSeverity(s string) (Severity, bool) {
	for sev, name := range severityNames {
		if name == s {
			return sev, true
		}
	}
	return SeverityInfo, false
}
