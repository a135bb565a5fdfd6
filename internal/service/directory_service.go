package service

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tools/internal/domain"
	"github.com/spec-kit/ticket-tools/internal/events"
)

// OwnerPageSize is the single page requested from the owner directory.
const OwnerPageSize = 100

// DirectoryService caches the owner directory for the life of the process.
type DirectoryService struct {
	directory  OwnerDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cache      atomic.Pointer[[]domain.Owner]
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	Directory  OwnerDirectory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewDirectoryService constructs the service with an empty cache.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListOwners returns every owner. The first successful load is kept and
// served on later calls; a failed load returns an empty slice and is retried
// on the next call.
func (s *DirectoryService) ListOwners(ctx context.Context) []domain.Owner {
	if cached := s.cache.Load(); cached != nil {
		return slices.Clone(*cached)
	}

	users, err := s.directory.ListOwners(ctx, OwnerPageSize)
	if err != nil {
		s.logger.Warn("owner directory load failed", zap.Error(err))
		return []domain.Owner{}
	}

	owners := make([]domain.Owner, 0, len(users))
	for _, u := range users {
		owners = append(owners, domain.Owner{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}

	// Concurrent first loads compute the same value; the first store wins.
	if !s.cache.CompareAndSwap(nil, &owners) {
		owners = *s.cache.Load()
	} else {
		publishEvent(ctx, s.dispatcher, events.Event{
			Type:    events.EventOwnersLoaded,
			Payload: events.OwnersLoadedPayload{Count: len(owners)},
		})
	}
	return slices.Clone(owners)
}

// FindOwnersByName matches term case-insensitively as a substring of the
// full name, first name, last name or email.
func (s *DirectoryService) FindOwnersByName(ctx context.Context, term string) []domain.OwnerMatch {
	needle := strings.ToLower(strings.TrimSpace(term))
	matches := []domain.OwnerMatch{}
	for _, o := range s.ListOwners(ctx) {
		if !ownerMatches(o, needle) {
			continue
		}
		matches = append(matches, domain.OwnerMatch{ID: o.ID, Email: o.Email, FullName: o.FullName()})
	}
	return matches
}

func ownerMatches(o domain.Owner, needle string) bool {
	for _, field := range []string{o.FullName(), o.FirstName, o.LastName, o.Email} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
