package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Sant0sss/jpr-iphone-stock/internal/domain"
)

type ctxKey string

const SellerIDKey ctxKey = "sellerID"

var ErrNoSeller = errors.New("seller not found in context")

type TokenFinder interface {
	FindByPlainToken(ctx context.Context, plainToken string) (*domain.SellerToken, error)
}

// TokenFromRequest reads a bearer token, falling back to ?token= for
// websocket clients that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			return tok
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// SellerTokenMiddleware rejects requests without a valid, unexpired seller
// token and stores the seller id in the request context.
func SellerTokenMiddleware(tokens TokenFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plain := TokenFromRequest(r)
			if plain == "" {
				log.Printf("[AUTH] %s %s: no token", r.Method, r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tok, err := tokens.FindByPlainToken(r.Context(), plain)
			if err != nil {
				log.Printf("[AUTH] %s %s: token lookup failed: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tok.Expired(time.Now()) {
				log.Printf("[AUTH] token id=%d expired at %v", tok.ID, tok.ExpiresAt)
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSellerID(r.Context(), tok.SellerID)))
		})
	}
}

func WithSellerID(ctx context.Context, sellerID int64) context.Context {
	return context.WithValue(ctx, SellerIDKey, sellerID)
}

func GetSellerID(ctx context.Context) (int64, error) {
	sellerID, ok := ctx.Value(SellerIDKey).(int64)
	if !ok {
		return 0, ErrNoSeller
	}
	return sellerID, nil
}
