package validation

// ValidateCommentContent validates the body of a comment.
func ValidateCommentContent(content string) []FieldError {
	return requiredText(nil, "content", content, maxDescriptionLen)
}
