package verifier

import (
	"fmt"

	"github.com/BigBirdReturns/axm-genesis/pkg/identity"
	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
)

// checkIdentityAndClaimRefs validates stage 6: every entity_id and
// claim_id is exactly the recomputed deterministic id for its row, every
// claim's object_type/tier are within the enum, and every claim's
// subject/object (when object_type is "entity") resolves to a known
// entity_id. Unlike the between-stage short-circuiting, this stage checks
// every row regardless of earlier failures within it.
func checkIdentityAndClaimRefs(tables *loadedTables) (entityIDs map[string]bool, claimIDs map[string]bool, errs []schema.VerifyError) {
	entityIDs = make(map[string]bool, len(tables.entities))
	for _, e := range tables.entities {
		want, err := identity.EntityID(e.Namespace, e.Label)
		if err != nil || want != e.EntityID {
			errs = append(errs, schema.VerifyError{Code: schema.ErrIDEntity, Message: fmt.Sprintf("entity_id mismatch for label %q", e.Label)})
		}
		entityIDs[e.EntityID] = true
	}

	claimIDs = make(map[string]bool, len(tables.claims))
	for _, c := range tables.claims {
		if !schema.ValidObjectTypes[schema.ObjectType(c.ObjectType)] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaEnum, Message: fmt.Sprintf("claim %s has invalid object_type %q", c.ClaimID, c.ObjectType)})
		}
		if !schema.ValidTiers[int(c.Tier)] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaEnum, Message: fmt.Sprintf("claim %s has invalid tier %d", c.ClaimID, c.Tier)})
		}

		want, err := identity.ClaimID(c.Subject, c.Predicate, c.Object, c.ObjectType)
		if err != nil || want != c.ClaimID {
			errs = append(errs, schema.VerifyError{Code: schema.ErrIDClaim, Message: fmt.Sprintf("claim_id mismatch for claim %s", c.ClaimID)})
		}
		claimIDs[c.ClaimID] = true

		if !entityIDs[c.Subject] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefOrphan, Message: fmt.Sprintf("claim %s subject %s is not a known entity", c.ClaimID, c.Subject)})
		}
		if c.ObjectType == string(schema.ObjectTypeEntity) && !entityIDs[c.Object] {
			errs = append(errs, schema.VerifyError{Code: schema.ErrRefOrphan, Message: fmt.Sprintf("claim %s object %s is not a known entity", c.ClaimID, c.Object)})
		}
	}

	return entityIDs, claimIDs, errs
}
