package classifier

// Verdict is the outcome of a rule that matched.
type Verdict int

const (
	Reject Verdict = iota
	Accept
)

func (v Verdict) String() string {
	if v == Accept {
		return "accept"
	}
	return "reject"
}

// Rule is one row of a decision table: when Match reports true, the key gets
// Verdict and evaluation stops.
type Rule struct {
	Name    string
	Match   func(Key) bool
	Verdict Verdict
}

// RuleSet is an ordered decision table. Keys matched by no rule get Default.
type RuleSet struct {
	Name    string
	Rules   []Rule
	Default Verdict
}

// DefaultRuleName is reported in a Decision when no rule matched.
const DefaultRuleName = "default"

// Decision explains a classification.
type Decision struct {
	Valid    bool
	Rule     string
	Category Category
}

func accept(name string, match func(Key) bool) Rule {
	return Rule{Name: name, Match: match, Verdict: Accept}
}

func reject(name string, match func(Key) bool) Rule {
	return Rule{Name: name, Match: match, Verdict: Reject}
}

func not(match func(Key) bool) func(Key) bool {
	return func(k Key) bool { return !match(k) }
}
