package gateway

/* WebhookRule maps a payload shape to the gateway that sends it
 * Rules are evaluated in order, the first match wins
 */
type WebhookRule struct {
	Name    string
	Gateway ID
	Match   func(payload map[string]any) bool
}

// HasFields matches payloads where every field is present and non-empty
func HasFields(fields ...string) func(map[string]any) bool {
	return func(payload map[string]any) bool {
		for _, f := range fields {
			if !present(payload[f]) {
				return false
			}
		}
		return true
	}
}

func present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}

// DefaultWebhookRules returns the notification shapes of the built-in gateways
func DefaultWebhookRules() []WebhookRule {
	return []WebhookRule{
		{Name: "mercadopago notification", Gateway: MercadoPago, Match: HasFields("type", "data", "application_id")},
		{Name: "todopago notification", Gateway: TodoPago, Match: HasFields("merchant", "operation")},
		{Name: "decidir notification", Gateway: Decidir, Match: HasFields("site_transaction_id", "payment_method_id")},
		{Name: "payu confirmation", Gateway: PayU, Match: HasFields("reference_sale", "state_pol")},
	}
}

// WebhookDetector infers the sending gateway of an unlabelled notification
type WebhookDetector struct {
	rules    []WebhookRule
	fallback ID
}

// NewWebhookDetector uses the default rules when none are given and
// falls back to MercadoPago when fallback is empty
func NewWebhookDetector(fallback ID, rules ...WebhookRule) *WebhookDetector {
	if len(rules) == 0 {
		rules = DefaultWebhookRules()
	}
	if fallback == "" {
		fallback = MercadoPago
	}
	return &WebhookDetector{rules: rules, fallback: fallback}
}

// Detect returns the gateway of the first matching rule, or the fallback
func (d *WebhookDetector) Detect(payload map[string]any) ID {
	for _, rule := range d.rules {
		if rule.Match != nil && rule.Match(payload) {
			return rule.Gateway
		}
	}
	return d.fallback
}

// Rules returns a copy of the rule table
func (d *WebhookDetector) Rules() []WebhookRule {
	out := make([]WebhookRule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Fallback returns the gateway used when no rule matches
func (d *WebhookDetector) Fallback() ID {
	return d.fallback
}
