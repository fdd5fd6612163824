package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/straye-as/quote-api/internal/repository"
	"go.uber.org/zap"
)

// maxSequence bounds the per-year counter. Imported numbers with a larger
// suffix are not part of the sequence.
const maxSequence = 999_999_999

const (
	QuoteNumberFormatSequence = "sequence"
	QuoteNumberFormatLegacy   = "legacy"
)

// QuoteNumberService issues human-readable quote numbers.
//
// Sequence format: {YY}{NNNN}, e.g. 260042 for the 42nd quote of 2026.
// The sequence widens past 9999 instead of wrapping.
// Legacy format: Q-{base36 unix millis}-{4 random base36 chars}.
type QuoteNumberService struct {
	repo   *repository.QuoteRepository
	format string
	now    func() time.Time
	logger *zap.Logger
}

// NewQuoteNumberService creates a new QuoteNumberService
func NewQuoteNumberService(repo *repository.QuoteRepository, format string, logger *zap.Logger) *QuoteNumberService {
	if format == "" {
		format = QuoteNumberFormatSequence
	}
	return &QuoteNumberService{
		repo:   repo,
		format: format,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source
func (s *QuoteNumberService) WithClock(now func() time.Time) *QuoteNumberService {
	s.now = now
	return s
}

// Generate returns an unused quote number in the configured format
func (s *QuoteNumberService) Generate(ctx context.Context) (string, error) {
	if s.format == QuoteNumberFormatLegacy {
		return s.generateUnusedLegacy(ctx)
	}
	return s.GenerateSequence(ctx)
}

// GenerateSequence scans the current year's numbers and returns max+1.
// Numbers that are not all digits after the year prefix, or whose suffix
// exceeds maxSequence, are ignored.
func (s *QuoteNumberService) GenerateSequence(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("%02d", s.now().Year()%100)

	numbers, err := s.repo.ListQuoteNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to list quote numbers: %w", err)
	}

	next := 1
	for _, n := range numbers {
		seq, ok := parseSequence(n, prefix)
		if ok && seq >= next {
			next = seq + 1
		}
	}

	for {
		candidate := fmt.Sprintf("%s%04d", prefix, next)
		exists, err := s.repo.QuoteNumberExists(ctx, candidate, nil)
		if err != nil {
			return "", fmt.Errorf("failed to check quote number: %w", err)
		}
		if !exists {
			s.logger.Debug("generated quote number", zap.String("quote_number", candidate))
			return candidate, nil
		}
		next++
	}
}

// GenerateLegacy returns a timestamp based number without consulting the store
func (s *QuoteNumberService) GenerateLegacy() string {
	ts := strconv.FormatInt(s.now().UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("Q-%s-%s", ts, randomBase36(4)))
}

func (s *QuoteNumberService) generateUnusedLegacy(ctx context.Context) (string, error) {
	for {
		candidate := s.GenerateLegacy()
		exists, err := s.repo.QuoteNumberExists(ctx, candidate, nil)
		if err != nil {
			return "", fmt.Errorf("failed to check quote number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

func parseSequence(number, prefix string) (int, bool) {
	rest := strings.TrimPrefix(number, prefix)
	if rest == number || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq >= maxSequence {
		return 0, false
	}
	return seq, true
}

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36Digits)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36Digits[idx.Int64()])
	}
	return b.String()
}
