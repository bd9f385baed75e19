package validation

import (
	"fmt"
	"regexp"
)

// UserIDPattern определяет допустимый формат user id
// Латинские буквы, цифры и символы _ . @ -, первый символ буква или цифра
// Длина: 1-64 символа
var UserIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.@-]*$`)

// MaxUserIDLen максимальная длина user id
const MaxUserIDLen = 64

// ValidateUserID проверяет id пользователя, которым помечаются строки и курсоры
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	if len(userID) > MaxUserIDLen {
		return fmt.Errorf("user id must not exceed %d characters", MaxUserIDLen)
	}

	if !UserIDPattern.MatchString(userID) {
		return fmt.Errorf("user id can only contain letters, numbers, '_', '.', '@' and '-' and must start with a letter or number")
	}

	return nil
}
