// Package record defines the submission document model shared by the
// retrieval sources, the expansion utilities and the export builders.
package record

// Document is one submission as retrieved from the document source: a mapping
// from field path to a scalar, a list of scalars (raw choice-multiple
// selection, annotation list) or a list of nested Documents (repeat-group
// occurrences). Documents flow through the pipeline once and are never
// persisted by the export core.
type Document = map[string]any

// Row is a flat mapping from output column name to scalar value emitted to an
// output sink. Multi-table rows additionally carry the surrogate linkage
// columns.
type Row = map[string]any

// Reserved metadata fields present on stored submissions.
const (
	FieldID               = "_id"
	FieldUUID             = "_uuid"
	FieldSubmissionTime   = "_submission_time"
	FieldTags             = "_tags"
	FieldNotes            = "_notes"
	FieldValidationStatus = "_validation_status"
	FieldAttachments      = "_attachments"
	FieldGeolocation      = "_geolocation"
	FieldStatus           = "_status"
	FieldXFormID          = "_xform_id_string"
	FieldSubmittedBy      = "_submitted_by"
	FieldDeletedAt        = "_deleted_at"
)

// AdditionalColumns are metadata fields outside the form definition that are
// appended to every emitted row.
var AdditionalColumns = []string{
	FieldUUID,
	FieldSubmissionTime,
	FieldTags,
	FieldNotes,
	FieldValidationStatus,
}

// IgnoredColumns are stored fields that never appear in export output.
var IgnoredColumns = []string{
	FieldXFormID,
	FieldStatus,
	FieldID,
	FieldAttachments,
	FieldGeolocation,
	FieldDeletedAt, // no longer written but may persist in old submissions
	FieldSubmittedBy,
}

// NestedDocs returns the elements of a list value that are nested repeat
// documents.
func NestedDocs(value any) []Document {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	var docs []Document
	for _, item := range list {
		if doc, ok := item.(map[string]any); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}
