// service содержит бизнес-логику lettera: регистрацию/аутентификацию
// пользователей, жизненный цикл сессий с тихой ротацией, проекты и их
// членства, внешние API-ключи, подписчиков и выпуски.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Ошибки возвращаются sentinel-значениями и далее маппятся HTTP-слоем
//     на коды статуса (см. internal/http/httperr). Все отказы аутентификации
//     наружу выглядят одинаково — 401 с общим сообщением.
package service

import (
	"errors"

	"github.com/TreasureUzoma/lettera/internal/config"
	"github.com/TreasureUzoma/lettera/internal/storage"
	"github.com/TreasureUzoma/lettera/internal/vault"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh/unsubscribe) некорректен по
	// формату/подписи или отсутствует в хранилище. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен отозван (logout) и недействителен
	// независимо от срока. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrInvalidAPIKey — внешний API-ключ не прошёл проверку: формат,
	// отсутствие записи, отзыв или несовпадение секрета. Конкретная причина
	// наружу не раскрывается. HTTP 401.
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrPermissionDenied — учётные данные валидны, но роли недостаточно
	// либо предъявленный ключ даёт не тот уровень доверия. HTTP 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrProjectNotFound — проект по UUID/slug не существует. HTTP 404.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotFound — прочая сущность не найдена. HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrSlugTaken — slug проекта уже занят. HTTP 409.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrAlreadyExists — нарушение прочей уникальности (участник, подписчик). HTTP 409.
	ErrAlreadyExists = errors.New("already exists")

	// ErrOwnerTransfer — передача владения через общий путь смены ролей
	// запрещена; для этого нужна отдельная операция с назначением нового
	// владельца. HTTP 400.
	ErrOwnerTransfer = errors.New("ownership transfer is not allowed here")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrIntegrity — расшифровка хранимого секрета не прошла аутентификацию
	// (тег GCM не сошёлся). Повтор бессмысленен: и шифртекст, и ключ статичны.
	// HTTP 500 с общим сообщением.
	ErrIntegrity = errors.New("stored ciphertext failed authentication")
)

// Service описывает бизнес-логику lettera.
type Service struct {
	storage storage.Storage
	vault   *vault.Vault
	cfg     config.AuthConfig

	// oauth может быть nil — тогда OAuth-входы отключены.
	oauth *OAuthExchanger

	// rotation схлопывает конкурентные ротации одного refresh-токена:
	// проигравший запрос получает пару, выпущенную победителем, вместо
	// перезаписи строки вслепую.
	rotation singleflight.Group
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, v *vault.Vault, cfg config.AuthConfig) *Service {
	return &Service{
		storage: st,
		vault:   v,
		cfg:     cfg,
	}
}

// SetOAuthExchanger подключает обмен кодов у внешних провайдеров (опционально).
func (s *Service) SetOAuthExchanger(e *OAuthExchanger) {
	s.oauth = e
}
