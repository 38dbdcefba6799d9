package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
const (
	attrEmail        = "email"
	attrSlug         = "slug"
	attrClaim        = "claim"
	attrActive       = "active"
	attrVerifiedAt   = "verified_at"
	attrUpdatedAt    = "updated_at"
	attrTemplateSlug = "template_slug"
	attrCreatedAt    = "created_at"
)

// levelKeyAttr returns the participant attribute holding the key for level n.
func levelKeyAttr(n int) string {
	switch n {
	case 1:
		return "level1_key"
	case 2:
		return "level2_key"
	case 3:
		return "level3_key"
	}
	return ""
}

// levelKeyIndex returns the sparse GSI over levelKeyAttr(n).
func levelKeyIndex(n int) string {
	return levelKeyAttr(n) + "-index"
}
