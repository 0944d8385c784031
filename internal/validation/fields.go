package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"puppytalk/internal/models"
)

const (
	TitleMaxLength   = 26
	CommentMaxLength = 500
	PageSizeMax      = 100
	PageSizeDefault  = 10
)

var nicknameRegex = regexp.MustCompile(`^[가-힣a-zA-Z0-9]{1,10}$`)

// ValidateNickname trims the nickname and checks 1-10 Hangul syllables,
// Latin letters or digits. It returns the trimmed value.
func ValidateNickname(nickname string) (string, error) {
	trimmed := strings.TrimSpace(nickname)
	if !nicknameRegex.MatchString(trimmed) {
		return "", models.NewValidationError(models.CodeInvalidNicknameFormat)
	}
	return trimmed, nil
}

// ValidateURL accepts an empty value, an absolute http(s) URL, or a URL
// rooted at the configured API base.
func ValidateURL(raw, apiBase string) error {
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return nil
	}
	if apiBase != "" && strings.HasPrefix(raw, apiBase) {
		return nil
	}
	return models.NewValidationError(models.CodeInvalidFileURL)
}

func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > TitleMaxLength {
		return models.NewValidationError(models.CodeInvalidTitleFormat)
	}
	return nil
}

func ValidatePostContent(content string) error {
	if utf8.RuneCountInString(content) < 1 {
		return models.NewValidationError(models.CodeInvalidContentFormat)
	}
	return nil
}

func ValidateCommentContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < 1 || n > CommentMaxLength {
		return models.NewValidationError(models.CodeInvalidCommentFormat)
	}
	return nil
}

// ValidateImageIDs enforces the per-post attachment limit and id shape.
// Existence is checked by the post service.
func ValidateImageIDs(ids []uint) error {
	if len(ids) > models.MaxPostImages {
		return models.NewValidationError(models.CodePostFileLimitExceeded)
	}
	for _, id := range ids {
		if id == 0 {
			return models.NewValidationError(models.CodeInvalidImageID)
		}
	}
	return nil
}

// ValidatePagination checks page >= 1 and 1 <= size <= 100.
func ValidatePagination(page, size int) error {
	if page < 1 || size < 1 || size > PageSizeMax {
		return models.NewValidationError(models.CodeInvalidPagination)
	}
	return nil
}
