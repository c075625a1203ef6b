package verifier

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BigBirdReturns/axm-genesis/pkg/schema"
	"github.com/BigBirdReturns/axm-genesis/pkg/table"
)

// tableFiles is the stage-ordering of the four required table files and
// the schema each must exactly match.
var tableFiles = []struct {
	relPath string
	schema  schema.TableSchema
}{
	{filepath.Join("graph", "entities.parquet"), schema.EntitiesSchema},
	{filepath.Join("graph", "claims.parquet"), schema.ClaimsSchema},
	{filepath.Join("graph", "provenance.parquet"), schema.ProvenanceSchema},
	{filepath.Join("evidence", "spans.parquet"), schema.SpansSchema},
}

// loadedTables holds the decoded rows for all four tables once schema
// validation has passed.
type loadedTables struct {
	entities   []schema.Entity
	claims     []schema.Claim
	provenance []schema.Provenance
	spans      []schema.Span
}

// checkAndLoadTables validates stage 4/5: each table file exists, is
// within size/row-count bounds, and matches its schema exactly column for
// column. On success it decodes and returns all four tables' rows.
func checkAndLoadTables(root string) (*loadedTables, []schema.VerifyError) {
	var errs []schema.VerifyError
	results := make(map[string]*table.ReadResult)

	for _, tf := range tableFiles {
		path := filepath.Join(root, tf.relPath)
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaMissing, Message: "missing table file: " + tf.relPath})
			continue
		}
		if info.Size() > maxFileBytes {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaRead, Message: tf.relPath + " exceeds max file size"})
			continue
		}
		res, err := table.Read(path, tf.schema)
		if err != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaType, Message: tf.relPath + ": " + err.Error()})
			continue
		}
		if len(res.Rows) > maxParquetRows {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaRead, Message: tf.relPath + " exceeds max row count"})
			continue
		}
		if nullErr := checkNoNulls(res, tf.schema); nullErr != nil {
			errs = append(errs, schema.VerifyError{Code: schema.ErrSchemaNull, Message: tf.relPath + ": " + nullErr.Error()})
			continue
		}
		results[tf.relPath] = res
	}

	if len(errs) > 0 {
		return nil, errs
	}

	entEntries := results[filepath.Join("graph", "entities.parquet")].Rows
	claimEntries := results[filepath.Join("graph", "claims.parquet")].Rows
	provEntries := results[filepath.Join("graph", "provenance.parquet")].Rows
	spanEntries := results[filepath.Join("evidence", "spans.parquet")].Rows

	entities, _ := table.DecodeEntities(entEntries)
	claims, _ := table.DecodeClaims(claimEntries)
	provenance, _ := table.DecodeProvenance(provEntries)
	spans, _ := table.DecodeSpans(spanEntries)

	return &loadedTables{entities: entities, claims: claims, provenance: provenance, spans: spans}, nil
}

// checkNoNulls reports a non-nil error if any string column holds the zero
// value in a position where zero-value ambiguity could mask a null. The
// table container has no null representation, so a present value is always
// a real value; this only guards against an empty-string value where the
// schema's column never permits one (identifiers and hashes).
func checkNoNulls(res *table.ReadResult, s schema.TableSchema) error {
	for _, row := range res.Rows {
		for i, col := range s.Columns {
			if col.Type != schema.ColString {
				continue
			}
			if isRequiredNonEmpty(s.Name, col.Name) && row[i].(string) == "" {
				return fmt.Errorf("column %s contains an empty value", col.Name)
			}
		}
	}
	return nil
}

func isRequiredNonEmpty(tableName, colName string) bool {
	switch colName {
	case schema.ColEntityID, schema.ColClaimID, schema.ColProvenanceID, schema.ColSpanID,
		schema.ColNamespace, schema.ColLabel, schema.ColEntityType,
		schema.ColSubject, schema.ColPredicate, schema.ColObjectType,
		schema.ColSourceHash:
		return true
	}
	return false
}
