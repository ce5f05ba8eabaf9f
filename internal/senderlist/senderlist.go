package senderlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker matches sender addresses against a list of domains
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new sender domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Normalize domains (lowercase, no leading @)
	normalized := make(map[string]struct{}, len(domains))
	var names []string
	for _, domain := range domains {
		d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
		if d == "" {
			continue
		}
		normalized[d] = struct{}{}
		names = append(names, d)
	}

	if len(names) > 0 {
		logger.Info("Initialized sender domain list", zap.Strings("domains", names))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Len returns the number of listed domains
func (c *Checker) Len() int {
	return len(c.domains)
}

// Matches reports whether the sender's domain, or a parent domain of it, is listed
func (c *Checker) Matches(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	at := strings.LastIndex(from, "@")
	if at < 0 || at == len(from)-1 {
		return false
	}
	domain := strings.ToLower(strings.Trim(from[at+1:], "> "))

	for d := domain; d != ""; {
		if _, ok := c.domains[d]; ok {
			c.logger.Debug("Sender domain is listed",
				zap.String("domain", domain),
				zap.String("email", from))
			return true
		}
		dot := strings.IndexByte(d, '.')
		if dot < 0 {
			break
		}
		d = d[dot+1:]
	}

	return false
}
