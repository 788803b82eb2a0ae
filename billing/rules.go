/*
rules.go - Checkout rule resolution

PURPOSE:
  Given a resident's elapsed tenure and the rules scoped to them,
  selects the single applicable deduction rule. Rules are tiered on
  tenure: a rule activates once the resident has stayed at least
  ActiveAfterDays, and among activated rules the one with the largest
  threshold wins (the tier closest to, but not exceeding, the tenure).

ASYMMETRY:
  Today only staff checkouts resolve rules; student checkouts apply a
  caller-supplied flat percentage with no rule lookup. The resolver is
  resident-type agnostic so both populations COULD share it; the
  checkout service decides who actually does. Preserve the current
  wiring unless product says otherwise.
*/
package billing

// ResolveRule selects the applicable checkout rule for the given
// tenure. Only active rules are eligible; of those whose threshold has
// been reached, the largest threshold wins. Returns false when no rule
// applies; the checkout then deducts nothing.
func ResolveRule(rules []CheckoutRule, tenureDays int) (CheckoutRule, bool) {
	var (
		best  CheckoutRule
		found bool
	)
	for _, r := range rules {
		if !r.IsActive || r.ActiveAfterDays > tenureDays {
			continue
		}
		if !found || r.ActiveAfterDays > best.ActiveAfterDays {
			best = r
			found = true
		}
	}
	return best, found
}
