package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadeslabs/paygate"
	"github.com/hadeslabs/paygate/config"
	"github.com/hadeslabs/paygate/logger"
	"github.com/hadeslabs/paygate/session"
	"github.com/hadeslabs/paygate/types"
)

type handler struct {
	pg  *paygate.PayGate
	cfg *config.Config
	log logger.Logger
}

type payRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

// Health always responds 200 OK.
func (h *handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// Intent returns a fresh payment quote. Price, recipient, and TTL are
// server-controlled; the client only gets to pay it.
func (h *handler) Intent(c *gin.Context) {
	it, err := h.pg.IssueIntent()
	if err != nil {
		h.log.Error("intent issuance failed", map[string]any{"err": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, it)
}

// Pay verifies the submitted transaction and, on success, issues the
// session credential as a cookie. Each failure mode gets its own status so
// the client can tell retryable from terminal.
func (h *handler) Pay(c *gin.Context) {
	var req payRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Missing transactionId"})
		return
	}

	transactionID := strings.TrimSpace(req.TransactionID)
	cred, payload, result, err := h.pg.Pay(c.Request.Context(), transactionID)
	if err != nil {
		h.payError(c, err)
		return
	}

	if !result.Verified() {
		switch result.Status {
		case types.StatusNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"ok":    false,
				"error": "Transaction not found (yet). Try again in a few seconds.",
			})
		case types.StatusFailed:
			c.JSON(http.StatusBadRequest, gin.H{
				"ok":    false,
				"error": "Transaction failed",
			})
		case types.StatusInsufficientAmount:
			c.JSON(http.StatusPaymentRequired, gin.H{
				"ok":               false,
				"error":            "Payment too small or not found",
				"requiredLamports": result.RequiredLamports,
				"detectedLamports": result.PaidLamports,
				"recipient":        h.cfg.Recipient,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
		}
		return
	}

	h.setSessionCookie(c, cred)
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"expiresAt":     payload.ExpiresAt,
		"paidLamports":  result.PaidLamports,
		"transactionId": result.TransactionID,
	})
}

func (h *handler) payError(c *gin.Context, err error) {
	var perr *types.Error
	if errors.As(err, &perr) {
		switch perr.Code {
		case types.ErrInvalidRequest:
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": perr.Message})
			return
		case types.ErrReplayedTx:
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": perr.Message})
			return
		case types.ErrLedgerUnavailable:
			c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "Ledger unavailable"})
			return
		}
	}
	h.log.Error("pay failed", map[string]any{"err": err.Error()})
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
}

// PremiumData is the protected route. A missing or invalid credential gets
// the paywall with everything needed to pay.
func (h *handler) PremiumData(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	decision := h.pg.Check(token)

	if !decision.Allowed {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"ok":               false,
			"error":            "PAYMENT_REQUIRED",
			"requiredLamports": decision.RequiredLamports,
			"recipient":        decision.Recipient,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"premium": true,
		"session": decision.Payload,
		"data": gin.H{
			"alpha": "live-feed-placeholder",
			"ts":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Status reports the caller's engine state plus the current unlock terms.
func (h *handler) Status(c *gin.Context) {
	token, _ := c.Cookie(session.CookieName)
	state := h.pg.State(token)

	c.JSON(http.StatusOK, gin.H{
		"state":            state,
		"route":            V1Prefix + PremiumDataPath,
		"priceLamports":    h.cfg.PriceLamports,
		"recipient":        h.cfg.Recipient,
		"intentTtlSeconds": h.cfg.IntentTTLSeconds,
		"sessionTtlMs":     h.cfg.SessionTTLMs,
	})
}

func (h *handler) setSessionCookie(c *gin.Context, cred types.Credential) {
	opts := h.pg.CookieOptions()
	c.SetSameSite(opts.SameSite)
	c.SetCookie(opts.Name, cred.String(), opts.MaxAge, opts.Path, "", opts.Secure, opts.HTTPOnly)
}
