// Package pincode реализует дайджест 4-значного PIN для вторичного
// подтверждения чувствительных действий.
//
// Digest принимает ровно 4 ASCII-цифры и возвращает SHA-256 от байтов строки
// в нижнем регистре hex. Дайджест детерминирован и не содержит соли:
// сравнение выполняется побайтово с эталоном из хранилища.
package pincode

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// PinLength длина PIN в символах.
const PinLength = 4

// ErrInvalidFormat возвращается, когда ввод не является 4 цифрами.
var ErrInvalidFormat = errors.New("MPIN must be exactly 4 digits")

// Digest вычисляет дайджест PIN. Для любого ввода, не являющегося ровно
// четырьмя ASCII-цифрами, возвращает ErrInvalidFormat и ничего не вычисляет.
func Digest(pin string) (string, error) {
	if !Valid(pin) {
		return "", ErrInvalidFormat
	}
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:]), nil
}

// Valid сообщает, является ли ввод корректным PIN: ровно 4 ASCII-цифры.
func Valid(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// Equal сравнивает два дайджеста за постоянное время.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
