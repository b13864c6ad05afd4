// cookies — подписанные сессионные cookie.
//
// Значение хранится в конверте "<value>.<sig>", где sig — HMAC-SHA256 от
// значения, закодированный base64url. Подпись не прячет значение (это не
// шифрование), а фиксирует его: правка cookie на клиенте ломает подпись,
// и такая cookie считается отсутствующей.
package cookies

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

// Имена сессионных cookie.
const (
	AccessCookie  = "letteraAccessToken"
	RefreshCookie = "letteraRefreshToken"
)

// Jar выписывает и читает подписанные cookie.
type Jar struct {
	secret []byte
	secure bool
}

// New создаёт Jar. secure=true проставляет флаг Secure (продакшен за TLS).
func New(secret string, secure bool) *Jar {
	return &Jar{secret: []byte(secret), secure: secure}
}

// Set выписывает подписанную cookie: httpOnly, SameSite=Lax, Path=/.
func (j *Jar) Set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    j.seal(value),
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear стирает cookie на клиенте.
func (j *Jar) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read достаёт cookie и проверяет подпись. Отсутствие cookie и битая
// подпись неразличимы: оба случая — (_, false).
func (j *Jar) Read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}

	return j.open(c.Value)
}

func (j *Jar) seal(value string) string {
	return value + "." + j.sign(value)
}

func (j *Jar) open(sealed string) (string, bool) {
	// Значение само может содержать точки (JWT), поэтому подпись — всё,
	// что правее последней точки.
	i := strings.LastIndexByte(sealed, '.')
	if i < 0 {
		return "", false
	}

	value, sig := sealed[:i], sealed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(j.sign(value))) {
		return "", false
	}

	return value, true
}

func (j *Jar) sign(value string) string {
	mac := hmac.New(sha256.New, j.secret)
	mac.Write([]byte(value))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
