package diagram

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/tfdiagram/tfdiagram/internal/logger"
)

// MissingParentPolicy decides what AddComponent does when the parent id
// does not resolve to a container.
type MissingParentPolicy int

const (
	// FallbackToRoot appends the component to the region and still reports
	// ErrParentNotFound.
	FallbackToRoot MissingParentPolicy = iota
	// FailOnMissingParent inserts nothing.
	FailOnMissingParent
)

// UnknownTypePolicy decides what FromRecord does with a node whose type tag
// has no registered factory.
type UnknownTypePolicy int

const (
	// SkipUnknown drops the node and its subtree and reports it in LoadResult.Skipped.
	SkipUnknown UnknownTypePolicy = iota
	// FailOnUnknown aborts the whole load.
	FailOnUnknown
)

// IDSource produces globally unique opaque identifiers.
type IDSource func() string

// Option configures a Document.
type Option func(*settings)

type settings struct {
	log           *slog.Logger
	newID         IDSource
	missingParent MissingParentPolicy
	unknownType   UnknownTypePolicy
}

func defaultSettings() settings {
	return settings{
		log:   logger.Default,
		newID: uuid.NewString,
	}
}

// WithLogger sets the logger used for recoverable conditions.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDSource replaces the default UUID generator.
func WithIDSource(src IDSource) Option {
	return func(s *settings) {
		if src != nil {
			s.newID = src
		}
	}
}

// WithMissingParentPolicy sets the AddComponent fallback behaviour.
func WithMissingParentPolicy(p MissingParentPolicy) Option {
	return func(s *settings) { s.missingParent = p }
}

// WithUnknownTypePolicy sets the load behaviour for unregistered type tags.
func WithUnknownTypePolicy(p UnknownTypePolicy) Option {
	return func(s *settings) { s.unknownType = p }
}
