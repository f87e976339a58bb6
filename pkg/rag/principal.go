// Package rag implements the C10 RAG permissions and collection hierarchy:
// principal identities, a collection tree with queryable-by sets, pattern
// resolution, permission-filtered hybrid search, and document ingest/sync.
// New logic per spec §4.7 — no pack repo implements a permissioned RAG
// collection tree — built on pkg/vectorstore's filter algebra and
// pkg/hybrid's fused search. github.com/golang-jwt/jwt/v5 (haasonsaas-
// nexus, goadesign-goa-ai) backs PrincipalFromToken.
package rag

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/loomware/agentcore/pkg/aierrors"
)

// PrincipalID is a non-zero identity: positive for a user, negative for a
// group, per spec §3.
type PrincipalID int64

// IsUser reports whether id identifies a user (positive).
func (id PrincipalID) IsUser() bool { return id > 0 }

// IsGroup reports whether id identifies a group (negative).
func (id PrincipalID) IsGroup() bool { return id < 0 }

// UserAuthorization is the caller's identity for a query: the set of
// principal ids it holds (its own user id plus any group ids) and whether
// it bypasses all permission checks as an admin.
type UserAuthorization struct {
	PrincipalIDs map[PrincipalID]struct{}
	IsAdmin      bool
}

// NewAuthorization builds a UserAuthorization from a list of principal ids.
func NewAuthorization(isAdmin bool, ids ...PrincipalID) UserAuthorization {
	set := make(map[PrincipalID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return UserAuthorization{PrincipalIDs: set, IsAdmin: isAdmin}
}

// Has reports whether auth carries id.
func (a UserAuthorization) Has(id PrincipalID) bool {
	_, ok := a.PrincipalIDs[id]
	return ok
}

// Intersects reports whether auth holds any of ids; an empty ids set means
// "public" and always intersects.
func (a UserAuthorization) Intersects(ids map[PrincipalID]struct{}) bool {
	if len(ids) == 0 {
		return true
	}
	for id := range ids {
		if a.Has(id) {
			return true
		}
	}
	return false
}

// subjectClaimKey is the JWT claim PrincipalFromToken reads the principal
// id from.
const subjectClaimKey = "sub"

// PrincipalFromToken verifies tokenString with keyFunc (the usual
// jwt.Keyfunc — resolve the signing key from the token's header) and maps
// its subject claim to a PrincipalID. The subject claim must parse as a
// non-zero signed integer; this module does not interpret string subject
// claims (e.g. a UUID) as principal ids.
func PrincipalFromToken(tokenString string, keyFunc jwt.Keyfunc) aierrors.Result[PrincipalID] {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		return aierrors.Err[PrincipalID](aierrors.NewAuthentication("jwt", err.Error()))
	}
	if !token.Valid {
		return aierrors.Err[PrincipalID](aierrors.NewAuthentication("jwt", "token not valid"))
	}
	sub, ok := claims[subjectClaimKey]
	if !ok {
		return aierrors.Err[PrincipalID](aierrors.NewAuthentication("jwt", "missing sub claim"))
	}
	id, err := parsePrincipalClaim(sub)
	if err != nil {
		return aierrors.Err[PrincipalID](aierrors.NewAuthentication("jwt", err.Error()))
	}
	return aierrors.Ok(id)
}

func parsePrincipalClaim(sub any) (PrincipalID, error) {
	switch v := sub.(type) {
	case float64:
		return PrincipalID(int64(v)), nil
	case string:
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("sub claim %q is not an integer principal id", v)
		}
		return PrincipalID(n), nil
	default:
		return 0, fmt.Errorf("sub claim has unsupported type %T", sub)
	}
}
