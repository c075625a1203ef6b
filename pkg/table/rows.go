package table

import "github.com/BigBirdReturns/axm-genesis/pkg/schema"

// EntityRows converts typed Entity rows (already sorted by entity_id by the
// caller) into generic table Rows in EntitiesSchema column order.
func EntityRows(entities []schema.Entity) []Row {
	rows := make([]Row, len(entities))
	for i, e := range entities {
		rows[i] = Row{e.EntityID, e.Namespace, e.Label, e.EntityType}
	}
	return rows
}

// ClaimRows converts typed Claim rows into generic table Rows in
// ClaimsSchema column order.
func ClaimRows(claims []schema.Claim) []Row {
	rows := make([]Row, len(claims))
	for i, c := range claims {
		rows[i] = Row{c.ClaimID, c.Subject, c.Predicate, c.Object, c.ObjectType, c.Tier}
	}
	return rows
}

// ProvenanceRows converts typed Provenance rows into generic table Rows in
// ProvenanceSchema column order.
func ProvenanceRows(prov []schema.Provenance) []Row {
	rows := make([]Row, len(prov))
	for i, p := range prov {
		rows[i] = Row{p.ProvenanceID, p.ClaimID, p.SourceHash, p.ByteStart, p.ByteEnd}
	}
	return rows
}

// SpanRows converts typed Span rows into generic table Rows in SpansSchema
// column order.
func SpanRows(spans []schema.Span) []Row {
	rows := make([]Row, len(spans))
	for i, s := range spans {
		rows[i] = Row{s.SpanID, s.SourceHash, s.ByteStart, s.ByteEnd, s.Text}
	}
	return rows
}

// DecodeEntities converts generic Rows (as produced by Read against
// EntitiesSchema) back into typed Entity rows.
func DecodeEntities(rows []Row) ([]schema.Entity, error) {
	out := make([]schema.Entity, len(rows))
	for i, r := range rows {
		out[i] = schema.Entity{
			EntityID:   r[0].(string),
			Namespace:  r[1].(string),
			Label:      r[2].(string),
			EntityType: r[3].(string),
		}
	}
	return out, nil
}

// DecodeClaims converts generic Rows (as produced by Read against
// ClaimsSchema) back into typed Claim rows.
func DecodeClaims(rows []Row) ([]schema.Claim, error) {
	out := make([]schema.Claim, len(rows))
	for i, r := range rows {
		out[i] = schema.Claim{
			ClaimID:    r[0].(string),
			Subject:    r[1].(string),
			Predicate:  r[2].(string),
			Object:     r[3].(string),
			ObjectType: r[4].(string),
			Tier:       r[5].(int8),
		}
	}
	return out, nil
}

// DecodeProvenance converts generic Rows (as produced by Read against
// ProvenanceSchema) back into typed Provenance rows.
func DecodeProvenance(rows []Row) ([]schema.Provenance, error) {
	out := make([]schema.Provenance, len(rows))
	for i, r := range rows {
		out[i] = schema.Provenance{
			ProvenanceID: r[0].(string),
			ClaimID:      r[1].(string),
			SourceHash:   r[2].(string),
			ByteStart:    r[3].(int64),
			ByteEnd:      r[4].(int64),
		}
	}
	return out, nil
}

// DecodeSpans converts generic Rows (as produced by Read against
// SpansSchema) back into typed Span rows.
func DecodeSpans(rows []Row) ([]schema.Span, error) {
	out := make([]schema.Span, len(rows))
	for i, r := range rows {
		out[i] = schema.Span{
			SpanID:     r[0].(string),
			SourceHash: r[1].(string),
			ByteStart:  r[2].(int64),
			ByteEnd:    r[3].(int64),
			Text:       r[4].(string),
		}
	}
	return out, nil
}
