package model

// Role is the account role carried in access tokens.
type Role string

// Known roles.
const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleJudge        Role = "judge"
	RoleLiteralJudge Role = "literal_judge"
	RoleVisualJudge  Role = "visual_judge"
	RoleVocalJudge   Role = "vocal_judge"
)

// IsJudge reports whether the role may evaluate posts.
func (r Role) IsJudge() bool {
	switch r {
	case RoleJudge, RoleLiteralJudge, RoleVisualJudge, RoleVocalJudge:
		return true
	default:
		return false
	}
}

// JudgeCategory returns the category a scoped judge is assigned to.
// ok is false for unscoped judges and non-judges.
func (r Role) JudgeCategory() (Category, bool) {
	switch r {
	case RoleLiteralJudge:
		return CategoryLiteral, true
	case RoleVisualJudge:
		return CategoryVisual, true
	case RoleVocalJudge:
		return CategoryVocal, true
	default:
		return "", false
	}
}
