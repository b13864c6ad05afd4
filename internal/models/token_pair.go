package models

import "time"

// TokenPair — пара токенов, выдаваемая при аутентификации и ротации.
//
// Описание:
//   - AccessToken — короткоживущий JWT (15 минут) с данными пользователя;
//   - RefreshToken — долгоживущий JWT (7 дней), подписанный отдельным секретом;
//   - AccessExpiresAt / RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
