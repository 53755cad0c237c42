package middlewares

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"realestate-crm/database"
	"realestate-crm/models"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyTTL is how long a key keeps replaying its stored response.
var IdempotencyTTL = 24 * time.Hour

// Idempotency processes Idempotency-Key for mutating HTTP methods against
// the idempotency_keys table. It is a no-op while no database is connected.
func Idempotency() fiber.Handler { return IdempotencyWith(nil) }

// IdempotencyWith is Idempotency over an explicit store. The first completed
// response for a key is stored and replayed to later requests with the same
// key and body. A nil store resolves to database.DB per request.
func IdempotencyWith(store KeyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}
		keys := store
		if keys == nil {
			if database.DB == nil {
				return c.Next()
			}
			keys = NewGormKeyStore(database.DB)
		}

		ctx := c.UserContext()
		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body())

		// ---- Phase 1: read or create the pending record
		var (
			existing models.IdempotencyKey
			created  bool
		)
		now := time.Now().UTC()
		err := keys.Atomic(ctx, func(tx KeyStore) error {
			found, err := tx.Find(ctx, key)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
			}
			if found != nil && !found.Expired(now) {
				existing = *found
				return nil
			}
			if found != nil {
				if err := tx.Delete(ctx, key); err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency cleanup failed")
				}
			}
			rec := models.IdempotencyKey{
				Key:         key,
				RequestHash: reqHash,
				Method:      method,
				Path:        path,
				ExpiresAt:   now.Add(IdempotencyTTL),
			}
			if err := tx.Create(ctx, &rec); err != nil {
				// unique race: the other request created it first
				other, e := tx.Find(ctx, key)
				if e != nil || other == nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
				}
				existing = *other
				return nil
			}
			existing, created = rec, true
			return nil
		})
		if err != nil {
			return err
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 {
			c.Set("Idempotent-Replay", "true")
			ct := existing.ContentType
			if ct == "" {
				ct = fiber.MIMEApplicationJSON
			}
			c.Set(fiber.HeaderContentType, ct)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}
		if !created {
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		if err := c.Next(); err != nil {
			// failed requests may be retried with the same key
			release(ctx, keys, key)
			return err
		}

		// ---- Phase 2: store the response
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			release(ctx, keys, key)
			return nil
		}
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		ct := string(c.Response().Header.ContentType())
		if err := keys.Complete(ctx, key, status, ct, blob, time.Now().UTC()); err != nil {
			slog.Warn("idempotency store failed", "key", key, "error", err)
		}
		return nil
	}
}

func release(ctx context.Context, keys KeyStore, key string) {
	if err := keys.Release(ctx, key); err != nil {
		slog.Warn("idempotency release failed", "key", key, "error", err)
	}
}

// requestHash is sha256 of method|path|body.
func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
