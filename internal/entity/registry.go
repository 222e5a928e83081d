package entity

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEntityFormat is returned for empty or malformed entity identifiers
var ErrInvalidEntityFormat = errors.New("invalid entity identifier format")

var (
	hexAddressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	accountIDPattern  = regexp.MustCompile(`^[A-Za-z0-9._:-]{3,128}$`)
)

// RepositoryInterface defines the persistence operations the registry needs
type RepositoryInterface interface {
	EnsureEntity(ctx context.Context, entityID string) error
	EntityExists(ctx context.Context, entityID string) (bool, error)
}

// Registry canonicalizes entity identifiers referenced by reports, evidence and cases
type Registry struct {
	repo RepositoryInterface
}

// NewRegistry creates a new entity registry
func NewRegistry(repo RepositoryInterface) *Registry {
	return &Registry{repo: repo}
}

// Normalize canonicalizes a raw identifier. Hex wallet addresses are
// lowercased and must be exactly 40 hex digits; other identifiers are
// accepted as-is within a safe character set.
func Normalize(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrInvalidEntityFormat
	}

	if strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X") {
		id = strings.ToLower(id)
		if !hexAddressPattern.MatchString(id) {
			return "", ErrInvalidEntityFormat
		}
		return id, nil
	}

	if !accountIDPattern.MatchString(id) {
		return "", ErrInvalidEntityFormat
	}
	return id, nil
}

// Ensure normalizes the identifier and records it on first reference
func (r *Registry) Ensure(ctx context.Context, raw string) (string, error) {
	id, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	if err := r.repo.EnsureEntity(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// Exists reports whether an entity has been referenced before
func (r *Registry) Exists(ctx context.Context, entityID string) (bool, error) {
	id, err := Normalize(entityID)
	if err != nil {
		return false, err
	}
	return r.repo.EntityExists(ctx, id)
}
