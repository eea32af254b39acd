package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/smartsales/pkg/config"
	"github.com/angelmondragon/smartsales/pkg/logger"
)

const cartIDHeader = "X-Cart-Id"

// VisitorCart resolves the anonymous cart key from the X-Cart-Id header or the
// cart cookie, minting a new one when neither carries a valid id.
func VisitorCart(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "smartsales_cart"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID, fromCookie := resolveCartID(r, cookieName)
			if cartID == "" {
				cartID = uuid.NewString()
			}
			if !fromCookie {
				http.SetCookie(w, cartCookie(cfg, cookieName, cartID))
			}
			w.Header().Set(cartIDHeader, cartID)

			ctx := WithCartID(r.Context(), cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveCartID(r *http.Request, cookieName string) (string, bool) {
	if id, ok := parseCartID(r.Header.Get(cartIDHeader)); ok {
		return id, false
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		if id, ok := parseCartID(cookie.Value); ok {
			return id, true
		}
	}
	return "", false
}

func parseCartID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func cartCookie(cfg config.CartConfig, name, value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.TTL > 0 {
		cookie.MaxAge = int(cfg.TTL / time.Second)
	}
	return cookie
}
