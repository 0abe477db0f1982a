package diagram

import (
	"errors"
	"fmt"
)

var (
	// ErrParentNotFound is reported when AddComponent names a container that
	// is not in the tree.
	ErrParentNotFound = errors.New("parent container not found")
	// ErrEndpointNotFound is returned when a relationship endpoint is not in the tree.
	ErrEndpointNotFound = errors.New("relationship endpoint not found")
	// ErrUnknownComponentType is returned when no factory is registered for a type tag.
	ErrUnknownComponentType = errors.New("unknown component type")
	// ErrDuplicateComponent is returned when a component id is already in the tree.
	ErrDuplicateComponent = errors.New("duplicate component id")
	// ErrNotContainer is returned when children are added to a leaf component.
	ErrNotContainer = errors.New("component is not a container")
)

// ParentNotFoundError describes an AddComponent call whose parent id did not
// resolve to a container. FellBackToRoot is true when the component was
// appended to the region instead.
type ParentNotFoundError struct {
	ComponentID    string
	ParentID       string
	FellBackToRoot bool
}

func (e *ParentNotFoundError) Error() string {
	if e.FellBackToRoot {
		return fmt.Sprintf("add %s: container %q not found, appended to region", e.ComponentID, e.ParentID)
	}
	return fmt.Sprintf("add %s: container %q not found", e.ComponentID, e.ParentID)
}

func (e *ParentNotFoundError) Unwrap() error { return ErrParentNotFound }

// EndpointNotFoundError lists the relationship endpoints that did not resolve.
type EndpointNotFoundError struct {
	SourceID string
	TargetID string
	Missing  []string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("relationship %s -> %s: component(s) not found: %v", e.SourceID, e.TargetID, e.Missing)
}

func (e *EndpointNotFoundError) Unwrap() error { return ErrEndpointNotFound }

// UnknownTypeError names the node whose type tag has no registered factory.
type UnknownTypeError struct {
	NodeID string
	Type   string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("node %s: unknown component type %q", e.NodeID, e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownComponentType }
