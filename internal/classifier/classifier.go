package classifier

// Classifier evaluates keys against a RuleSet.
type Classifier struct {
	rules RuleSet
}

// New creates a Classifier for rs. The rule set is copied so later changes to
// the caller's slice do not affect classification.
func New(rs RuleSet) *Classifier {
	rules := make([]Rule, len(rs.Rules))
	copy(rules, rs.Rules)
	rs.Rules = rules
	return &Classifier{rules: rs}
}

// NewCanonical creates a Classifier for the canonical rule set.
func NewCanonical() *Classifier { return New(Canonical()) }

// RuleSetName returns the name of the rule set in use.
func (c *Classifier) RuleSetName() string { return c.rules.Name }

// Valid reports whether key belongs in the valid language file.
func (c *Classifier) Valid(key string) bool {
	return c.Classify(key).Valid
}

// Classify evaluates key and reports which rule decided it.
func (c *Classifier) Classify(key string) Decision {
	k := ParseKey(key)
	for _, r := range c.rules.Rules {
		if r.Match(k) {
			return Decision{Valid: r.Verdict == Accept, Rule: r.Name, Category: k.Category}
		}
	}
	return Decision{Valid: c.rules.Default == Accept, Rule: DefaultRuleName, Category: k.Category}
}
