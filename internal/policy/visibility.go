// Package policy holds the post visibility rules as pure functions so the
// services can share one decision table instead of re-deriving it inline.
package policy

import "ripple/internal/models"

// DenyReason distinguishes why a read was refused.
type DenyReason string

const (
	// DenyNone means the read is allowed.
	DenyNone DenyReason = ""
	// DenyNeedsFollow means the post is private and the viewer does not
	// follow the owner.
	DenyNeedsFollow DenyReason = "needs_follow"
	// DenyNotVisible means the post is not visible to the viewer at all.
	DenyNotVisible DenyReason = "not_visible"
)

// Decision is the outcome of a visibility check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Decide applies the visibility table in order of precedence:
// owner, then admin, then public, then private-with-follow. Everything
// else is denied, restricted posts included: only the owner and admins
// read those. followsOwner only matters for private posts.
func Decide(ownerID uint, privacy models.Privacy, viewerID uint, isAdmin, followsOwner bool) Decision {
	if viewerID == ownerID {
		return Decision{Allowed: true}
	}
	if isAdmin {
		return Decision{Allowed: true}
	}
	switch privacy {
	case models.PrivacyPublic:
		return Decision{Allowed: true}
	case models.PrivacyPrivate:
		if followsOwner {
			return Decision{Allowed: true}
		}
		return Decision{Reason: DenyNeedsFollow}
	}
	return Decision{Reason: DenyNotVisible}
}

// CanEditComment reports whether comments on a post with the given
// privacy may be edited. Restricted posts freeze their comment threads;
// not even the comment author or an admin may edit there.
func CanEditComment(privacy models.Privacy) bool {
	return privacy != models.PrivacyRestricted
}
